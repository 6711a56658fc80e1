package phase

import (
	"context"
	"time"

	"github.com/xaynet-labs/pet-coordinator/identity"
	"github.com/xaynet-labs/pet-coordinator/mux"
	"github.com/xaynet-labs/pet-coordinator/round"
)

// sumState collects Sum messages until either min_sum has been reached
// at phase_times_min, or phase_times_max is hit outright. A max_sum cap
// rejects further accepts once reached, the same posture Update takes
// for max_update.
type sumState struct {
	params round.Params
}

func (s *sumState) Name() string { return "sum" }

func (s *sumState) Run(ctx context.Context, d *Driver) State {
	dict := round.NewSumDict()
	timer := newPhaseTimer(d.Cfg.PhaseTimesMin, d.Cfg.PhaseTimesMax)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		if dict.Len() >= d.Cfg.MinSum && timer.minElapsed() {
			break
		}
		if timer.maxElapsed() {
			if dict.Len() < d.Cfg.MinSum {
				if d.Log != nil {
					d.Log.Warn("phase: sum timed out short of minimum", logPhase(d, s.params.ID, s.Name(), "count", dict.Len())...)
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
		s.handle(d, dict, req)
	}

	dict.Freeze()
	d.Bus.SumDict.Publish(s.params.ID, *dict)
	if d.Dictionaries != nil {
		if err := d.Dictionaries.SaveSumDict(ctx, s.params.ID, dict); err != nil && d.Log != nil {
			d.Log.Warn("phase: failed to snapshot sum dict", logPhase(d, s.params.ID, s.Name(), "error", err)...)
		}
	}
	return &updateState{params: s.params, sumDict: dict}
}

func (s *sumState) handle(d *Driver, dict *round.SumDict, req *mux.Request) {
	if req.Tag != mux.TagSum {
		rejectWrongPhase(req)
		return
	}
	sp := req.Sum
	if sp == nil {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectMalformed})
		return
	}
	if !identity.IsEligible(s.params.RoundSeed, identity.RoleSum, sp.PK, s.params.SumRatio) {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectNotEligible})
		if d.Metrics != nil {
			d.Metrics.ParticipantsRejected().WithLabelValues(s.Name(), "not_eligible").Inc()
		}
		return
	}
	if dict.Len() >= d.Cfg.MaxSum {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectDiscarded})
		if d.Metrics != nil {
			d.Metrics.ParticipantsRejected().WithLabelValues(s.Name(), "max_sum_reached").Inc()
		}
		return
	}
	if err := dict.Insert(sp.PK, sp.EphmPK); err != nil {
		req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectDuplicate})
		if d.Metrics != nil {
			d.Metrics.ParticipantsRejected().WithLabelValues(s.Name(), "duplicate").Inc()
		}
		return
	}

	req.Resolve(mux.Reply{Kind: mux.ReplyOk})
	if d.Metrics != nil {
		d.Metrics.ParticipantsAccepted().WithLabelValues(s.Name()).Inc()
	}
}
