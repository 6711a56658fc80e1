package round

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaynet-labs/pet-coordinator/identity"
)

func TestSumDict_InsertRejectsDuplicate(t *testing.T) {
	d := NewSumDict()
	pk := identity.PublicKey("participant-a-key-000000000000000")
	var ephm identity.EphemeralPublicKey

	require.NoError(t, d.Insert(pk, ephm))
	err := d.Insert(pk, ephm)
	require.ErrorIs(t, err, ErrDuplicateSumKey)
	require.Equal(t, 1, d.Len())
}

func TestSumDict_FreezeRejectsFurtherWrites(t *testing.T) {
	d := NewSumDict()
	pkA := identity.PublicKey("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	pkB := identity.PublicKey("BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	var ephm identity.EphemeralPublicKey

	require.NoError(t, d.Insert(pkA, ephm))
	d.Freeze()

	err := d.Insert(pkB, ephm)
	require.ErrorIs(t, err, ErrSumDictFrozen)
	require.Equal(t, 1, d.Len())
}

func TestSumDict_Keys(t *testing.T) {
	d := NewSumDict()
	pkA := identity.PublicKey("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	pkB := identity.PublicKey("BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	var ephm identity.EphemeralPublicKey

	require.NoError(t, d.Insert(pkA, ephm))
	require.NoError(t, d.Insert(pkB, ephm))

	keys := d.Keys()
	require.Equal(t, 2, keys.Len())
	require.True(t, keys.Contains(string(pkA)))
}
