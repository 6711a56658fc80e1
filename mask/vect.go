package mask

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

var primeCache = map[Config]*big.Int{}

// PrimeOrder returns the prime defining cfg's finite group, deriving it
// deterministically from weightBytes so every coordinator instance agrees
// on the same group without exchanging it out of band.
func PrimeOrder(cfg Config) *big.Int {
	if p, ok := primeCache[cfg]; ok {
		return p
	}

	bits := uint(weightBytes(cfg) * 8)
	candidate := new(big.Int).Lsh(big.NewInt(1), bits)
	candidate.Sub(candidate, big.NewInt(1))
	one := big.NewInt(1)
	for !candidate.ProbablyPrime(20) {
		candidate.Sub(candidate, one)
	}
	primeCache[cfg] = candidate
	return candidate
}

// MaskVect is a vector of N big-integer weights sharing a single Config.
type MaskVect struct {
	Config  Config
	Weights []*big.Int
}

// NewMaskVect builds a MaskVect, reducing every weight modulo cfg's prime
// order so the result is always a valid group element.
func NewMaskVect(cfg Config, weights []*big.Int) MaskVect {
	p := PrimeOrder(cfg)
	reduced := make([]*big.Int, len(weights))
	for i, w := range weights {
		reduced[i] = new(big.Int).Mod(w, p)
	}
	return MaskVect{Config: cfg, Weights: reduced}
}

// Len returns the number of weights in the vector.
func (v MaskVect) Len() int { return len(v.Weights) }

// Add returns v+o mod the shared prime order. Both vectors must share a
// Config and length; callers validate shape before calling Add.
func (v MaskVect) Add(o MaskVect) (MaskVect, error) {
	if v.Config != o.Config {
		return MaskVect{}, fmt.Errorf("mask: config mismatch %s != %s", v.Config, o.Config)
	}
	if len(v.Weights) != len(o.Weights) {
		return MaskVect{}, fmt.Errorf("mask: length mismatch %d != %d", len(v.Weights), len(o.Weights))
	}
	p := PrimeOrder(v.Config)
	out := make([]*big.Int, len(v.Weights))
	for i := range v.Weights {
		out[i] = new(big.Int).Add(v.Weights[i], o.Weights[i])
		out[i].Mod(out[i], p)
	}
	return MaskVect{Config: v.Config, Weights: out}, nil
}

// Sub returns v-o mod the shared prime order.
func (v MaskVect) Sub(o MaskVect) (MaskVect, error) {
	if v.Config != o.Config {
		return MaskVect{}, fmt.Errorf("mask: config mismatch %s != %s", v.Config, o.Config)
	}
	if len(v.Weights) != len(o.Weights) {
		return MaskVect{}, fmt.Errorf("mask: length mismatch %d != %d", len(v.Weights), len(o.Weights))
	}
	p := PrimeOrder(v.Config)
	out := make([]*big.Int, len(v.Weights))
	for i := range v.Weights {
		out[i] = new(big.Int).Sub(v.Weights[i], o.Weights[i])
		out[i].Mod(out[i], p)
	}
	return MaskVect{Config: v.Config, Weights: out}, nil
}

// MaskUnit is a single scalar sharing the same wire shape as a MaskVect of
// length one.
type MaskUnit struct {
	Config Config
	Value  *big.Int
}

// NewMaskUnit builds a MaskUnit reduced modulo cfg's prime order.
func NewMaskUnit(cfg Config, value *big.Int) MaskUnit {
	p := PrimeOrder(cfg)
	return MaskUnit{Config: cfg, Value: new(big.Int).Mod(value, p)}
}

// Add returns u+o mod the shared prime order.
func (u MaskUnit) Add(o MaskUnit) (MaskUnit, error) {
	sum, err := u.vect().Add(o.vect())
	if err != nil {
		return MaskUnit{}, err
	}
	return MaskUnit{Config: sum.Config, Value: sum.Weights[0]}, nil
}

// Sub returns u-o mod the shared prime order.
func (u MaskUnit) Sub(o MaskUnit) (MaskUnit, error) {
	diff, err := u.vect().Sub(o.vect())
	if err != nil {
		return MaskUnit{}, err
	}
	return MaskUnit{Config: diff.Config, Value: diff.Weights[0]}, nil
}

func (u MaskUnit) vect() MaskVect {
	return MaskVect{Config: u.Config, Weights: []*big.Int{u.Value}}
}

// MaskObject pairs a model-length vector with a single scalar, both under
// the same Config. It is the unit of exchange for Sum2 submissions and the
// key type of MaskDict.
type MaskObject struct {
	Vect MaskVect
	Unit MaskUnit
}

// Key returns a stable string identifying this MaskObject's exact byte
// content, suitable as a map key (MaskDict counts by structural equality
// over the full mask bytes, never by pointer identity).
func (m MaskObject) Key() string {
	sum := sha256.Sum256(m.Bytes())
	return hex.EncodeToString(sum[:])
}

func (m MaskObject) String() string {
	return fmt.Sprintf("MaskObject{%s, len=%d}", m.Vect.Config, m.Vect.Len())
}
