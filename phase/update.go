package phase

import (
	"context"
	"time"

	"github.com/xaynet-labs/pet-coordinator/identity"
	"github.com/xaynet-labs/pet-coordinator/mux"
	"github.com/xaynet-labs/pet-coordinator/round"

	"github.com/xaynet-labs/pet-coordinator/aggregate"
)

// maxAggregatorForwardFailures bounds how many consecutive failed
// best-effort forwards to the external aggregator sidecar an Update
// phase tolerates before escalating the whole round to
// KindAggregationInvariant. A failed forward is not retried or resent:
// each failure only counts toward this bound, and a successful forward
// resets the count. The in-process aggregate.Aggregation sum stays authoritative either
// way, the forward only mirrors the same contribution to a real
// numeric backend when one is attached.
const maxAggregatorForwardFailures = 3

// aggregatorForwardTimeout bounds a single forward call so a wedged
// aggregator sidecar cannot stall the collection loop past its own
// max_duration.
const aggregatorForwardTimeout = 10 * time.Second

// updateState collects Update messages, merging each into the coordinator
// SeedDict and folding its masked contribution into the running
// aggregation, while mirroring every accepted contribution to the
// external aggregator sidecar over RPC.
type updateState struct {
	params  round.Params
	sumDict *round.SumDict
}

func (s *updateState) Name() string { return "update" }

func (s *updateState) Run(ctx context.Context, d *Driver) State {
	seedDict := round.NewSeedDict(s.sumDict.Keys())
	agg := aggregate.New(d.MaskConfig, d.ModelLen, d.Cfg.MaxAggregators)
	forwardFailures := 0

	timer := newPhaseTimer(d.Cfg.PhaseTimesMin, d.Cfg.PhaseTimesMax)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		if agg.Count() >= d.Cfg.MinUpdate && timer.minElapsed() {
			break
		}
		if timer.maxElapsed() {
			if agg.Count() < d.Cfg.MinUpdate {
				if d.Log != nil {
					d.Log.Warn("phase: update timed out short of minimum", logPhase(d, s.params.ID, s.Name(), "count", agg.Count())...)
				}
				return &errorState{kind: KindInsufficientParticipants}
			}
			break
		}

		req, ok := awaitNext(ctx, d.Mux, ticker)
		if !ok {
			return &shutdownState{}
		}
		if req == nil {
			continue
		}

		escalate := s.handle(ctx, d, seedDict, agg, req, &forwardFailures)
		if escalate {
			return &errorState{kind: KindAggregationInvariant}
		}
	}

	seedDict.Freeze()
	d.Bus.SeedDict.Publish(s.params.ID, *seedDict)
	d.Bus.Scalar.Publish(s.params.ID, agg.Scalar())
	d.Bus.MaskLength.Publish(s.params.ID, d.ModelLen)
	if d.Dictionaries != nil {
		if err := d.Dictionaries.SaveSeedDict(ctx, s.params.ID, seedDict); err != nil && d.Log != nil {
			d.Log.Warn("phase: failed to snapshot seed dict", logPhase(d, s.params.ID, s.Name(), "error", err)...)
		}
	}
	return &sum2State{params: s.params, sumDict: s.sumDict, agg: agg}
}

// handle processes one Update request, returning true if the phase must
// escalate to an error transition because the aggregator forward link
// has failed too many times in a row.
func (s *updateState) handle(ctx context.Context, d *Driver, seedDict *round.SeedDict, agg *aggregate.Aggregation, req *mux.Request, forwardFailures *int) bool {
	if req.Tag != mux.TagUpdate {
		rejectWrongPhase(req)
		return false
	}
	up := req.Up
	if up == nil {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectMalformed})
		return false
	}
	if !identity.IsEligible(s.params.RoundSeed, identity.RoleUpdate, up.PK, s.params.UpdateRatio) {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectNotEligible})
		s.rejectMetric(d, "not_eligible")
		return false
	}
	if agg.Count() >= d.Cfg.MaxUpdate {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectDiscarded})
		s.rejectMetric(d, "max_update_reached")
		return false
	}
	if up.MaskedModel.Config != d.MaskConfig || up.MaskedScalar.Config != d.MaskConfig || up.MaskedModel.Len() != d.ModelLen {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectMalformed})
		s.rejectMetric(d, "shape_mismatch")
		return false
	}

	updatePk := string(up.PK)
	if err := seedDict.Merge(updatePk, round.LocalSeedDict(up.LocalSeedDict)); err != nil {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectMalformed})
		s.rejectMetric(d, "seed_dict_key_mismatch")
		return false
	}

	if err := agg.Add(up.MaskedModel, up.MaskedScalar); err != nil {
		if d.Log != nil {
			d.Log.Error("phase: local aggregation invariant violated", logPhase(d, s.params.ID, s.Name(), "error", err)...)
		}
		req.Resolve(mux.Reply{Kind: mux.ReplyInternal})
		return true
	}

	if d.Aggregator != nil {
		fctx, cancel := context.WithTimeout(ctx, aggregatorForwardTimeout)
		err := d.Aggregator.Aggregate(fctx, up.MaskedModel.Bytes(), up.MaskedScalar.Bytes())
		cancel()
		if err != nil {
			*forwardFailures++
			if d.Log != nil {
				d.Log.Warn("phase: aggregator forward failed", logPhase(d, s.params.ID, s.Name(), "consecutive_failures", *forwardFailures, "error", err)...)
			}
		} else {
			*forwardFailures = 0
		}
	}

	req.Resolve(mux.Reply{Kind: mux.ReplyOk})
	if d.Metrics != nil {
		d.Metrics.ParticipantsAccepted().WithLabelValues(s.Name()).Inc()
	}

	return *forwardFailures >= maxAggregatorForwardFailures
}

func (s *updateState) rejectMetric(d *Driver, reason string) {
	if d.Metrics != nil {
		d.Metrics.ParticipantsRejected().WithLabelValues(s.Name(), reason).Inc()
	}
}
