package phase

import (
	"context"

	"github.com/xaynet-labs/pet-coordinator/round"
)

// idleState starts a fresh round: a new round id, a new round seed, and
// freshly published round.Params. It accepts no participant requests ,
// anything still queued from the previous round is left for sumState,
// which rejects non-Sum messages as wrong-phase and checks Sum messages
// against the new round's seed, rather than being drained here.
type idleState struct{}

func (s *idleState) Name() string { return "idle" }

func (s *idleState) Run(ctx context.Context, d *Driver) State {
	seed, err := newRoundSeed()
	if err != nil {
		if d.Log != nil {
			d.Log.Error("phase: failed to draw round seed", "error", err)
		}
		return &errorState{kind: KindAggregationInvariant}
	}

	roundID := d.nextRoundID()
	params := round.Params{
		ID:          roundID,
		RoundSeed:   seed,
		SumRatio:    d.Cfg.Sum,
		UpdateRatio: d.Cfg.Update,
		MaskConfig:  d.MaskConfig,
		ModelLength: d.ModelLen,
	}

	// The Model topic is left alone: the last completed round's global
	// model stays published until a later round replaces it.
	d.Bus.RoundParams.Invalidate(roundID)
	d.Bus.Scalar.Invalidate(roundID)
	d.Bus.SumDict.Invalidate(roundID)
	d.Bus.SeedDict.Invalidate(roundID)
	d.Bus.MaskLength.Invalidate(roundID)
	d.Bus.RoundParams.Publish(roundID, params)
	if d.Metrics != nil {
		d.Metrics.RoundsStarted().Inc()
	}
	if d.Log != nil {
		d.Log.Info("phase: round started", logPhase(d, roundID, s.Name())...)
	}

	return &sumState{params: params}
}
