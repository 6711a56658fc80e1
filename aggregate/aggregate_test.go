package aggregate

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaynet-labs/pet-coordinator/mask"
)

func cfg() mask.Config {
	return mask.Config{Bound: mask.BoundB0}
}

func vect(t *testing.T, c mask.Config, vals ...int64) mask.MaskVect {
	t.Helper()
	weights := make([]*big.Int, len(vals))
	for i, v := range vals {
		weights[i] = big.NewInt(v)
	}
	return mask.NewMaskVect(c, weights)
}

func unit(c mask.Config, v int64) mask.MaskUnit {
	return mask.NewMaskUnit(c, big.NewInt(v))
}

func TestAggregation_AddAndUnmask(t *testing.T) {
	c := cfg()
	a := New(c, 3, 10)

	require.NoError(t, a.Add(vect(t, c, 1, 2, 3), unit(c, 5)))
	require.NoError(t, a.Add(vect(t, c, 10, 20, 30), unit(c, 7)))
	require.Equal(t, 2, a.Count())

	// The reconstructed mask here is the zero mask, so unmasking just
	// divides the raw sum by the contribution count.
	best := mask.MaskObject{
		Vect: vect(t, c, 0, 0, 0),
		Unit: unit(c, 0),
	}
	g, err := a.Unmask(best)
	require.NoError(t, err)
	require.Equal(t, []float64{5.5, 11, 16.5}, g.Values)
}

func TestAggregation_AddRejectsCountOverflow(t *testing.T) {
	c := cfg()
	a := New(c, 1, 1)

	require.NoError(t, a.Add(vect(t, c, 1), unit(c, 1)))
	err := a.Add(vect(t, c, 2), unit(c, 2))
	require.ErrorIs(t, err, ErrAggregationInvariant)
}

func TestAggregation_AddRejectsConfigMismatch(t *testing.T) {
	c := cfg()
	other := mask.Config{Bound: mask.BoundB1}
	a := New(c, 1, 10)

	err := a.Add(vect(t, other, 1), unit(other, 1))
	require.ErrorIs(t, err, ErrAggregationInvariant)
}

func TestAggregation_AddRejectsLengthMismatch(t *testing.T) {
	c := cfg()
	a := New(c, 3, 10)

	err := a.Add(vect(t, c, 1, 2), unit(c, 1))
	require.ErrorIs(t, err, ErrAggregationInvariant)
}

func TestAggregation_UnmaskRejectsEmptyAggregation(t *testing.T) {
	c := cfg()
	a := New(c, 2, 10)

	_, err := a.Unmask(mask.MaskObject{Vect: vect(t, c, 0, 0), Unit: unit(c, 0)})
	require.ErrorIs(t, err, ErrAggregationInvariant)
}

func TestAggregation_UnmaskRejectsShapeMismatch(t *testing.T) {
	c := cfg()
	a := New(c, 2, 10)
	require.NoError(t, a.Add(vect(t, c, 1, 2), unit(c, 1)))

	_, err := a.Unmask(mask.MaskObject{Vect: vect(t, c, 0, 0, 0), Unit: unit(c, 0)})
	require.ErrorIs(t, err, ErrAggregationInvariant)
}

func TestAggregation_UnmaskRecoversNegativeValues(t *testing.T) {
	c := cfg()
	a := New(c, 1, 10)
	require.NoError(t, a.Add(vect(t, c, 3), unit(c, 0)))

	// Subtracting a larger mask than the sum wraps into the negative half
	// of the group, which toSignedFloat must recover as a negative value.
	best := mask.MaskObject{Vect: vect(t, c, 10), Unit: unit(c, 0)}
	g, err := a.Unmask(best)
	require.NoError(t, err)
	require.Len(t, g.Values, 1)
	require.Equal(t, -7.0, g.Values[0])
}
