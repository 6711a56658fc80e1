package mask

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func intsToBig(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestMaskObject_ReferenceVector(t *testing.T) {
	cfg := Config{Group: GroupInteger, Data: DataI32, Bound: BoundB0, Model: ModelM3}
	obj := MaskObject{
		Vect: NewMaskVect(cfg, intsToBig(1, 2, 3, 4)),
		Unit: NewMaskUnit(cfg, big.NewInt(1)),
	}

	want := []byte{
		0x00, 0x02, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x04,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x04, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x02, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x01,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	require.Equal(t, want, obj.Bytes())
}

func TestMaskObject_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		weights []int64
		unit    int64
	}{
		{"single weight", Config{Bound: BoundB0, Model: ModelM3}, []int64{42}, 7},
		{"several weights", Config{Bound: BoundB0, Data: DataI32}, []int64{1, 2, 3, 4}, 1},
		{"wider bound", Config{Bound: BoundB2, Data: DataI64}, []int64{1000, 2000, 3000}, 9},
		{"empty vector", Config{Bound: BoundB0}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := MaskObject{
				Vect: NewMaskVect(tt.cfg, intsToBig(tt.weights...)),
				Unit: NewMaskUnit(tt.cfg, big.NewInt(tt.unit)),
			}

			encoded := obj.Bytes()
			decoded, err := FromBytes(encoded)
			require.NoError(t, err)
			require.Equal(t, obj.Vect.Config, decoded.Vect.Config)
			require.Equal(t, len(obj.Vect.Weights), len(decoded.Vect.Weights))
			for i := range obj.Vect.Weights {
				require.Equal(t, 0, obj.Vect.Weights[i].Cmp(decoded.Vect.Weights[i]))
			}
			require.Equal(t, 0, obj.Unit.Value.Cmp(decoded.Unit.Value))
		})
	}
}

func TestMaskObject_FromReader(t *testing.T) {
	cfg := Config{Bound: BoundB0, Data: DataI32}
	obj := MaskObject{
		Vect: NewMaskVect(cfg, intsToBig(5, 6)),
		Unit: NewMaskUnit(cfg, big.NewInt(3)),
	}

	decoded, err := FromReader(bytes.NewReader(obj.Bytes()))
	require.NoError(t, err)
	require.Equal(t, obj.Key(), decoded.Key())
}

func TestMaskObject_FromReader_ShortInputIsDecodeError(t *testing.T) {
	cfg := Config{Bound: BoundB0, Data: DataI32}
	obj := MaskObject{
		Vect: NewMaskVect(cfg, intsToBig(5, 6)),
		Unit: NewMaskUnit(cfg, big.NewInt(3)),
	}
	full := obj.Bytes()

	_, err := FromReader(bytes.NewReader(full[:len(full)-1]))
	require.ErrorIs(t, err, ErrDecode)
}

func TestFromBytes_TrailingGarbageRejected(t *testing.T) {
	cfg := Config{Bound: BoundB0}
	obj := MaskObject{
		Vect: NewMaskVect(cfg, intsToBig(1)),
		Unit: NewMaskUnit(cfg, big.NewInt(1)),
	}
	garbage := append(obj.Bytes(), 0xFF)

	_, err := FromBytes(garbage)
	require.ErrorIs(t, err, ErrDecode)
}

func TestFromBytes_MissingUnitRejected(t *testing.T) {
	cfg := Config{Bound: BoundB0}
	vectOnly := NewMaskVect(cfg, intsToBig(1, 2)).Bytes()

	_, err := FromBytes(vectOnly)
	require.ErrorIs(t, err, ErrDecode)
}

func TestMaskObject_KeyStableAcrossEquivalentValues(t *testing.T) {
	cfg := Config{Bound: BoundB0}
	a := MaskObject{Vect: NewMaskVect(cfg, intsToBig(1, 2, 3)), Unit: NewMaskUnit(cfg, big.NewInt(4))}
	b := MaskObject{Vect: NewMaskVect(cfg, intsToBig(1, 2, 3)), Unit: NewMaskUnit(cfg, big.NewInt(4))}
	c := MaskObject{Vect: NewMaskVect(cfg, intsToBig(1, 2, 9)), Unit: NewMaskUnit(cfg, big.NewInt(4))}

	require.Equal(t, a.Key(), b.Key())
	require.NotEqual(t, a.Key(), c.Key())
}

func TestMaskVect_AddAndSub(t *testing.T) {
	cfg := Config{Bound: BoundB0}
	a := NewMaskVect(cfg, intsToBig(1, 2, 3))
	b := NewMaskVect(cfg, intsToBig(10, 20, 30))

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, int64(11), sum.Weights[0].Int64())
	require.Equal(t, int64(22), sum.Weights[1].Int64())
	require.Equal(t, int64(33), sum.Weights[2].Int64())

	back, err := sum.Sub(b)
	require.NoError(t, err)
	for i := range back.Weights {
		require.Equal(t, 0, back.Weights[i].Cmp(a.Weights[i]))
	}
}

func TestMaskVect_AddShapeMismatch(t *testing.T) {
	cfg := Config{Bound: BoundB0}
	a := NewMaskVect(cfg, intsToBig(1, 2, 3))
	b := NewMaskVect(cfg, intsToBig(1, 2))

	_, err := a.Add(b)
	require.Error(t, err)
}
