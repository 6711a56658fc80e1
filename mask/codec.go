package mask

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ErrDecode is returned whenever a decoded buffer is malformed, truncated,
// or internally inconsistent (e.g. the unit prefix is missing).
var ErrDecode = errors.New("mask: decode error")

// Bytes encodes v as [config(4)][count(u32 big-endian)][count*weightBytes
// little-endian weights]. The big-endian length prefix mirrors how the
// reference implementation frames variable-length payloads elsewhere on
// the wire (§4.5); only the weight magnitudes themselves are little-endian.
func (v MaskVect) Bytes() []byte {
	cfgBytes := v.Config.Bytes()
	width := weightBytes(v.Config)
	out := make([]byte, 0, 4+4+len(v.Weights)*width)
	out = append(out, cfgBytes[:]...)

	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(v.Weights)))
	out = append(out, countBuf[:]...)

	for _, w := range v.Weights {
		out = append(out, encodeWeightLE(w, width)...)
	}
	return out
}

// VectFromBytes decodes a MaskVect from the front of b, returning the
// number of bytes consumed so composite decoders can continue past it.
func VectFromBytes(b []byte) (MaskVect, int, error) {
	if len(b) < 8 {
		return MaskVect{}, 0, fmt.Errorf("%w: buffer too short for header", ErrDecode)
	}
	var cfgArr [4]byte
	copy(cfgArr[:], b[:4])
	cfg := ConfigFromBytes(cfgArr)
	count := binary.BigEndian.Uint32(b[4:8])
	width := weightBytes(cfg)
	need := 8 + int(count)*width
	if len(b) < need {
		return MaskVect{}, 0, fmt.Errorf("%w: expected %d bytes, have %d", ErrDecode, need, len(b))
	}

	weights := make([]*big.Int, count)
	offset := 8
	for i := range weights {
		weights[i] = decodeWeightLE(b[offset : offset+width])
		offset += width
	}
	return MaskVect{Config: cfg, Weights: weights}, need, nil
}

// VectFromReader decodes a single MaskVect from r, reading exactly the
// header and the count*width weight bytes it declares. A short read is a
// decode error; bytes after the vector are left unread in r.
func VectFromReader(r io.Reader) (MaskVect, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return MaskVect{}, fmt.Errorf("%w: reading header: %v", ErrDecode, err)
	}
	var cfgArr [4]byte
	copy(cfgArr[:], header[:4])
	cfg := ConfigFromBytes(cfgArr)
	count := binary.BigEndian.Uint32(header[4:8])
	width := weightBytes(cfg)

	body := make([]byte, int(count)*width)
	if _, err := io.ReadFull(r, body); err != nil {
		return MaskVect{}, fmt.Errorf("%w: reading weights: %v", ErrDecode, err)
	}

	weights := make([]*big.Int, count)
	offset := 0
	for i := range weights {
		weights[i] = decodeWeightLE(body[offset : offset+width])
		offset += width
	}
	return MaskVect{Config: cfg, Weights: weights}, nil
}

// Bytes encodes u the same way as a length-one MaskVect.
func (u MaskUnit) Bytes() []byte {
	return u.vect().Bytes()
}

// UnitFromBytes decodes a MaskUnit from the front of b.
func UnitFromBytes(b []byte) (MaskUnit, int, error) {
	v, n, err := VectFromBytes(b)
	if err != nil {
		return MaskUnit{}, 0, err
	}
	if v.Len() != 1 {
		return MaskUnit{}, 0, fmt.Errorf("%w: unit must carry exactly one weight, got %d", ErrDecode, v.Len())
	}
	return MaskUnit{Config: v.Config, Value: v.Weights[0]}, n, nil
}

// Bytes encodes the composite MaskObject as [MaskVect][MaskUnit], each
// independently length-prefixed.
func (m MaskObject) Bytes() []byte {
	out := m.Vect.Bytes()
	out = append(out, m.Unit.Bytes()...)
	return out
}

// FromBytes decodes a MaskObject from an exact-length slice, verifying
// the trailing unit exists and that the declared lengths consume the
// entire buffer.
func FromBytes(b []byte) (MaskObject, error) {
	vect, n, err := VectFromBytes(b)
	if err != nil {
		return MaskObject{}, fmt.Errorf("decoding vect: %w", err)
	}
	rest := b[n:]
	if len(rest) == 0 {
		return MaskObject{}, fmt.Errorf("%w: missing trailing unit", ErrDecode)
	}
	unit, m2, err := UnitFromBytes(rest)
	if err != nil {
		return MaskObject{}, fmt.Errorf("decoding unit: %w", err)
	}
	if n+m2 != len(b) {
		return MaskObject{}, fmt.Errorf("%w: trailing garbage after unit (%d of %d bytes consumed)", ErrDecode, n+m2, len(b))
	}
	return MaskObject{Vect: vect, Unit: unit}, nil
}

// FromReader decodes a MaskObject by streaming a vect then a unit off r.
func FromReader(r io.Reader) (MaskObject, error) {
	vect, err := VectFromReader(r)
	if err != nil {
		return MaskObject{}, fmt.Errorf("decoding vect: %w", err)
	}
	unitVect, err := VectFromReader(r)
	if err != nil {
		return MaskObject{}, fmt.Errorf("decoding unit: %w", err)
	}
	if unitVect.Len() != 1 {
		return MaskObject{}, fmt.Errorf("%w: unit must carry exactly one weight, got %d", ErrDecode, unitVect.Len())
	}
	return MaskObject{
		Vect: vect,
		Unit: MaskUnit{Config: unitVect.Config, Value: unitVect.Weights[0]},
	}, nil
}

func encodeWeightLE(w *big.Int, width int) []byte {
	be := new(big.Int).Set(w).FillBytes(make([]byte, width))
	le := make([]byte, width)
	for i, b := range be {
		le[width-1-i] = b
	}
	return le
}

func decodeWeightLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}
