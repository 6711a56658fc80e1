package eventbus

import (
	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
	"github.com/xaynet-labs/pet-coordinator/round"
)

// Bus aggregates the six topics the fetcher services in pet/fetcher read
// from. Each topic's payload is stamped with the round id of the round it
// belongs to, so a fetcher that wakes up late can tell a stale value from
// a current one.
type Bus struct {
	RoundParams *Topic[round.Params]
	Scalar      *Topic[mask.MaskUnit]
	SumDict     *Topic[round.SumDict]
	SeedDict    *Topic[round.SeedDict]
	MaskLength  *Topic[int]
	Model       *Topic[model.Global]
}

// NewBus returns a Bus with every topic freshly invalidated.
func NewBus() *Bus {
	return &Bus{
		RoundParams: NewTopic[round.Params](),
		Scalar:      NewTopic[mask.MaskUnit](),
		SumDict:     NewTopic[round.SumDict](),
		SeedDict:    NewTopic[round.SeedDict](),
		MaskLength:  NewTopic[int](),
		Model:       NewTopic[model.Global](),
	}
}

// InvalidateAll withdraws every topic's current value, used when a round
// fails so no fetcher keeps serving that round's values.
func (b *Bus) InvalidateAll(roundID string) {
	b.RoundParams.Invalidate(roundID)
	b.Scalar.Invalidate(roundID)
	b.SumDict.Invalidate(roundID)
	b.SeedDict.Invalidate(roundID)
	b.MaskLength.Invalidate(roundID)
	b.Model.Invalidate(roundID)
}
