package fetcher

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xaynet-labs/pet-coordinator/eventbus"
	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
	"github.com/xaynet-labs/pet-coordinator/round"
)

func TestRoundParamsFetcher_InvalidatedByDefault(t *testing.T) {
	bus := eventbus.NewBus()
	f := NewRoundParamsFetcher(bus)

	_, ok := f.Get()
	require.False(t, ok)

	bus.RoundParams.Publish("round-1", round.Params{ID: "round-1"})
	params, ok := f.Get()
	require.True(t, ok)
	require.Equal(t, "round-1", params.ID)

	bus.RoundParams.Invalidate("round-1")
	_, ok = f.Get()
	require.False(t, ok)
}

func TestScalarFetcher(t *testing.T) {
	bus := eventbus.NewBus()
	f := NewScalarFetcher(bus)

	cfg := mask.Config{Bound: mask.BoundB0}
	bus.Scalar.Publish("round-1", mask.NewMaskUnit(cfg, big.NewInt(42)))

	got, ok := f.Get()
	require.True(t, ok)
	require.Equal(t, int64(42), got.Value.Int64())
}

func TestSeedDictFetcher_SharesFor(t *testing.T) {
	bus := eventbus.NewBus()
	f := NewSeedDictFetcher(bus)

	_, ok, _, err := f.SharesFor(hex.EncodeToString([]byte("pk")))
	require.NoError(t, err)
	require.False(t, ok)

	sumKeys := round.NewSumDict()
	require.NoError(t, sumKeys.Insert([]byte("sum-pk"), [32]byte{}))
	seedDict := round.NewSeedDict(sumKeys.Keys())
	require.NoError(t, seedDict.Merge("update-pk", round.LocalSeedDict{"sum-pk": []byte("enc")}))
	bus.SeedDict.Publish("round-1", *seedDict)

	shares, ok, found, err := f.SharesFor(hex.EncodeToString([]byte("sum-pk")))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, found)
	require.Equal(t, []byte("enc"), shares["update-pk"])

	_, ok, found, err = f.SharesFor(hex.EncodeToString([]byte("unknown")))
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, found)

	_, _, _, err = f.SharesFor("not-hex!!")
	require.Error(t, err)
}

func TestModelFetcher_LoadsFromStore(t *testing.T) {
	bus := eventbus.NewBus()
	store := model.NewMemoryStore()
	f := NewModelFetcher(bus, store)

	_, ok, err := f.Get(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SaveModel(context.Background(), "round-1", model.Global{Values: []float64{1, 2, 3}}))
	bus.Model.Publish("round-1", model.Global{RoundID: "round-1"})

	got, ok, err := f.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []float64{1, 2, 3}, got.Values)
}

func TestMaskLengthAndSumDictFetchers(t *testing.T) {
	bus := eventbus.NewBus()
	lengthFetcher := NewMaskLengthFetcher(bus)
	sumFetcher := NewSumDictFetcher(bus)

	_, ok := lengthFetcher.Get()
	require.False(t, ok)
	_, ok = sumFetcher.Get()
	require.False(t, ok)

	bus.MaskLength.Publish("round-1", 7)
	length, ok := lengthFetcher.Get()
	require.True(t, ok)
	require.Equal(t, 7, length)

	dict := round.NewSumDict()
	require.NoError(t, dict.Insert([]byte("pk"), [32]byte{}))
	bus.SumDict.Publish("round-1", *dict)
	got, ok := sumFetcher.Get()
	require.True(t, ok)
	require.Equal(t, 1, got.Len())
}
