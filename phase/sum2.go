package phase

import (
	"context"
	"time"

	"github.com/xaynet-labs/pet-coordinator/aggregate"
	"github.com/xaynet-labs/pet-coordinator/identity"
	"github.com/xaynet-labs/pet-coordinator/mux"
	"github.com/xaynet-labs/pet-coordinator/round"
)

// sum2State collects each sum participant's reconstructed mask. Its
// target is the size of the frozen SumDict rather than a separately
// configured count; sum participants that drop out are covered by the
// max_duration advance below. Unlike
// Sum and Update, Sum2 always advances to Unmask at max_duration even
// short of that target, since the plurality mask reconstructed from
// fewer-than-all sum participants is still usable.
type sum2State struct {
	params  round.Params
	sumDict *round.SumDict
	agg     *aggregate.Aggregation
}

func (s *sum2State) Name() string { return "sum2" }

func (s *sum2State) Run(ctx context.Context, d *Driver) State {
	dict := round.NewMaskDict()
	submitted := round.NewKeySet(s.sumDict.Len())
	target := s.sumDict.Len()
	timer := newPhaseTimer(d.Cfg.PhaseTimesMin, d.Cfg.PhaseTimesMax)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		if dict.Len() >= target && timer.minElapsed() {
			break
		}
		if timer.maxElapsed() {
			break
		}

		req, ok := awaitNext(ctx, d.Mux, ticker)
		if !ok {
			return &shutdownState{}
		}
		if req == nil {
			continue
		}
		s.handle(d, dict, submitted, req)
	}

	if d.Dictionaries != nil {
		if err := d.Dictionaries.SaveMaskDict(ctx, s.params.ID, dict); err != nil && d.Log != nil {
			d.Log.Warn("phase: failed to snapshot mask dict", logPhase(d, s.params.ID, s.Name(), "error", err)...)
		}
	}
	return &unmaskState{params: s.params, agg: s.agg, maskDict: dict}
}

func (s *sum2State) handle(d *Driver, dict *round.MaskDict, submitted round.KeySet, req *mux.Request) {
	if req.Tag != mux.TagSum2 {
		rejectWrongPhase(req)
		return
	}
	sp := req.Sum2
	if sp == nil {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectMalformed})
		return
	}
	if !identity.IsEligible(s.params.RoundSeed, identity.RoleSum, sp.PK, s.params.SumRatio) {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectNotEligible})
		s.rejectMetric(d, "not_eligible")
		return
	}
	if !s.sumDict.Contains(sp.PK) {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectNotSumParticipant})
		s.rejectMetric(d, "not_sum_participant")
		return
	}
	key := string(sp.PK)
	if submitted.Contains(key) {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectDuplicate})
		s.rejectMetric(d, "duplicate")
		return
	}
	if sp.Mask.Vect.Config != d.MaskConfig || sp.Mask.Unit.Config != d.MaskConfig || sp.Mask.Vect.Len() != d.ModelLen {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectMalformed})
		s.rejectMetric(d, "shape_mismatch")
		return
	}

	submitted.Add(key)
	dict.Add(sp.Mask)
	req.Resolve(mux.Reply{Kind: mux.ReplyOk})
	if d.Metrics != nil {
		d.Metrics.ParticipantsAccepted().WithLabelValues(s.Name()).Inc()
	}
}

func (s *sum2State) rejectMetric(d *Driver, reason string) {
	if d.Metrics != nil {
		d.Metrics.ParticipantsRejected().WithLabelValues(s.Name(), reason).Inc()
	}
}
