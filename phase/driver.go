// Package phase implements the coordinator's round state machine: one
// struct per phase (Idle, Sum, Update, Sum2, Unmask, Error, Shutdown)
// behind a common State interface, driven by a Driver loop in the style
// of the teacher's Stage-machine engine.
package phase

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/xaynet-labs/pet-coordinator/api/metrics"
	"github.com/xaynet-labs/pet-coordinator/aggregate"
	"github.com/xaynet-labs/pet-coordinator/config"
	"github.com/xaynet-labs/pet-coordinator/eventbus"
	"github.com/xaynet-labs/pet-coordinator/identity"
	"github.com/xaynet-labs/pet-coordinator/logging"
	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
	"github.com/xaynet-labs/pet-coordinator/mux"
	"github.com/xaynet-labs/pet-coordinator/storage"
)

// State is one phase of the round state machine. Run performs the
// phase's work, collecting requests, checking its own timers, and
// returns the State to transition to next. A nil error is not part of
// this contract: phase failures are represented as a transition to
// *errorState, not a Go error, so the driver loop never needs to guess
// whether an error is fatal.
type State interface {
	Run(ctx context.Context, d *Driver) State
	Name() string
}

// Driver owns the single active State plus every shared collaborator a
// phase needs: the request mux, the fetcher event bus, the round's
// static mask configuration, the aggregator RPC link, and model
// storage. Run loops state = state.Run(...) until it reaches
// *shutdownState.
type Driver struct {
	Mux        *mux.Mux
	Bus        *eventbus.Bus
	Cfg        config.PETConfig
	MaskConfig mask.Config
	ModelLen   int
	Aggregator   Aggregator
	Store        model.Store
	Dictionaries storage.Dictionaries
	Metrics      metrics.Metrics
	Log          logging.Logger

	roundSeq uint64
}

// NewDriver wires a Driver's collaborators. maskConfig and modelLen are
// deployment constants fixed by the model being trained, not part of
// the per-round tunables in cfg. dicts may be nil, in which case phases
// skip recording debug snapshots.
func NewDriver(m *mux.Mux, bus *eventbus.Bus, cfg config.PETConfig, maskConfig mask.Config, modelLen int, agg Aggregator, store model.Store, dicts storage.Dictionaries, mtr metrics.Metrics, log logging.Logger) *Driver {
	return &Driver{
		Mux:          m,
		Bus:          bus,
		Cfg:          cfg,
		MaskConfig:   maskConfig,
		ModelLen:     modelLen,
		Aggregator:   agg,
		Store:        store,
		Dictionaries: dicts,
		Metrics:      mtr,
		Log:          log,
	}
}

// Run drives the state machine starting from Idle until it reaches
// Shutdown, which happens only when ctx is canceled or the mux is
// closed out from under a phase mid-collection.
func (d *Driver) Run(ctx context.Context) {
	var state State = &idleState{}
	for {
		start := time.Now()
		next := state.Run(ctx, d)
		if d.Metrics != nil {
			d.Metrics.PhaseDuration().WithLabelValues(state.Name()).Observe(time.Since(start).Seconds())
		}
		if _, done := next.(*shutdownState); done {
			return
		}
		state = next
	}
}

// nextRoundID returns a fresh, monotonically increasing round
// identifier. Round ids are coordinator-local bookkeeping, not a
// cryptographic value, unlike the round seed, they need not be secret.
func (d *Driver) nextRoundID() string {
	d.roundSeq++
	return fmt.Sprintf("round-%d", d.roundSeq)
}

// newRoundSeed draws 32 bytes of entropy for a fresh round.
func newRoundSeed() (identity.RoundSeed, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return identity.RoundSeed{}, fmt.Errorf("phase: drawing round seed: %w", err)
	}
	return identity.NewRoundSeed(b), nil
}

// awaitNext reads the next participant request off the mux, also
// waking on ctx cancellation and on a periodic tick so a phase's
// caller can re-check its duration deadlines even when idle. ok is
// false when the mux closed or ctx was canceled, in both cases the
// caller must transition to Shutdown. req is nil on a bare tick.
func awaitNext(ctx context.Context, m *mux.Mux, ticker *time.Ticker) (req *mux.Request, ok bool) {
	select {
	case <-ctx.Done():
		return nil, false
	case r, open := <-m.Requests():
		if !open {
			return nil, false
		}
		return r, true
	case <-ticker.C:
		return nil, true
	}
}

// rejectWrongPhase resolves a request that arrived for a tag this
// phase does not accept.
func rejectWrongPhase(req *mux.Request) {
	req.Resolve(mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectWrongPhase})
}

// logPhase tags a Driver's log lines with the running round id and
// phase name, matching the logging package's Fields convention.
func logPhase(d *Driver, roundID, phaseName string, kv ...interface{}) []interface{} {
	return logging.Fields(roundID, phaseName, kv...)
}
