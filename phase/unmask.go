package phase

import (
	"context"
	"errors"

	"github.com/xaynet-labs/pet-coordinator/aggregate"
	"github.com/xaynet-labs/pet-coordinator/round"
)

// unmaskState reconstructs the plurality mask, subtracts it from the
// accumulated aggregation, and publishes the resulting global model. It
// accepts no participant requests: anything still queued is drained and
// rejected immediately so no caller blocks on Wait past this point.
type unmaskState struct {
	params   round.Params
	agg      *aggregate.Aggregation
	maskDict *round.MaskDict
}

func (s *unmaskState) Name() string { return "unmask" }

func (s *unmaskState) Run(ctx context.Context, d *Driver) State {
	if shutdown := s.drain(d); shutdown {
		return &shutdownState{}
	}

	best, err := s.maskDict.Plurality()
	if err != nil {
		switch {
		case errors.Is(err, round.ErrNoMask):
			return &errorState{kind: KindNoMask}
		case errors.Is(err, round.ErrAmbiguousMasks):
			return &errorState{kind: KindAmbiguousMasks}
		default:
			return &errorState{kind: KindAggregationInvariant}
		}
	}

	if err := s.agg.ValidateUnmasking(best); err != nil {
		if d.Log != nil {
			d.Log.Error("phase: unmasking validation failed", logPhase(d, s.params.ID, s.Name(), "error", err)...)
		}
		return &errorState{kind: KindAggregationInvariant}
	}

	global, err := s.agg.Unmask(best)
	if err != nil {
		if d.Log != nil {
			d.Log.Error("phase: unmask failed", logPhase(d, s.params.ID, s.Name(), "error", err)...)
		}
		return &errorState{kind: KindAggregationInvariant}
	}
	global.RoundID = s.params.ID

	if err := d.Store.SaveModel(ctx, s.params.ID, global); err != nil {
		if d.Log != nil {
			d.Log.Error("phase: saving global model failed", logPhase(d, s.params.ID, s.Name(), "error", err)...)
		}
		return &errorState{kind: KindAggregationInvariant}
	}
	d.Bus.Model.Publish(s.params.ID, global)

	if d.Metrics != nil {
		d.Metrics.RoundsCompleted().Inc()
	}
	if d.Log != nil {
		d.Log.Info("phase: round completed", logPhase(d, s.params.ID, s.Name(), "model_len", global.Len())...)
	}

	return &idleState{}
}

// drain rejects anything still queued on the mux with WrongPhase rather
// than leaving it for the next round's Sum phase to misjudge, since
// Unmask has no collection window of its own to naturally absorb it.
func (s *unmaskState) drain(d *Driver) (shutdown bool) {
	for {
		select {
		case req, ok := <-d.Mux.Requests():
			if !ok {
				return true
			}
			rejectWrongPhase(req)
		default:
			return false
		}
	}
}
