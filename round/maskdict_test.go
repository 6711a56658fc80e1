package round

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaynet-labs/pet-coordinator/mask"
)

func vec(t *testing.T, vals ...int64) mask.MaskObject {
	t.Helper()
	cfg := mask.Config{Bound: mask.BoundB0}
	weights := make([]*big.Int, len(vals))
	for i, v := range vals {
		weights[i] = big.NewInt(v)
	}
	return mask.MaskObject{
		Vect: mask.NewMaskVect(cfg, weights),
		Unit: mask.NewMaskUnit(cfg, big.NewInt(0)),
	}
}

func TestMaskDict_PluralityUniqueWinner(t *testing.T) {
	d := NewMaskDict()
	a := vec(t, 1, 2, 3)
	b := vec(t, 9, 9, 9)

	d.Add(a)
	d.Add(a)
	d.Add(b)

	winner, err := d.Plurality()
	require.NoError(t, err)
	require.Equal(t, a.Key(), winner.Key())
}

func TestMaskDict_PluralityEmpty(t *testing.T) {
	d := NewMaskDict()
	_, err := d.Plurality()
	require.ErrorIs(t, err, ErrNoMask)
}

func TestMaskDict_PluralityTieIsAmbiguous(t *testing.T) {
	d := NewMaskDict()
	a := vec(t, 1, 2, 3)
	b := vec(t, 4, 5, 6)

	d.Add(a)
	d.Add(b)

	_, err := d.Plurality()
	require.ErrorIs(t, err, ErrAmbiguousMasks)
}

func TestMaskDict_PluralityThreeWayTieIsAmbiguous(t *testing.T) {
	d := NewMaskDict()
	d.Add(vec(t, 1))
	d.Add(vec(t, 2))
	d.Add(vec(t, 3))

	_, err := d.Plurality()
	require.ErrorIs(t, err, ErrAmbiguousMasks)
}

func TestSeedDict_MergeRejectsKeyMismatch(t *testing.T) {
	sumKeys := KeySetOf("A", "B", "C")
	sd := NewSeedDict(sumKeys)

	err := sd.Merge("update1", LocalSeedDict{"A": []byte("a"), "B": []byte("b")})
	require.ErrorIs(t, err, ErrSeedDictKeyMismatch)
	require.Equal(t, 0, sd.Len())
}

func TestSeedDict_MergeAccepts(t *testing.T) {
	sumKeys := KeySetOf("A", "B", "C")
	sd := NewSeedDict(sumKeys)

	err := sd.Merge("update1", LocalSeedDict{"A": []byte("a"), "B": []byte("b"), "C": []byte("c")})
	require.NoError(t, err)
	require.Equal(t, 1, sd.Len())

	shares, ok := sd.SharesFor("A")
	require.True(t, ok)
	require.Equal(t, []byte("a"), shares["update1"])
}
