package phase

import (
	"context"
	"time"
)

// errorState is the single failure landing pad every phase failure
// transitions through: it invalidates every fetcher topic so stale
// readers don't act on a round that never finished, waits out the
// configured cooldown, and restarts from Idle. The driver only reaches
// Shutdown instead when the mux itself closes, a phase failure never
// does.
type errorState struct {
	kind ErrorKind
}

func (s *errorState) Name() string { return "error" }

func (s *errorState) Run(ctx context.Context, d *Driver) State {
	if d.Metrics != nil {
		d.Metrics.RoundsFailed().WithLabelValues(s.kind.String()).Inc()
	}
	if d.Log != nil {
		d.Log.Warn("phase: round failed", "kind", s.kind.String())
	}
	d.Bus.InvalidateAll("")

	cooldown := d.Cfg.ErrorRecoveryCooldown
	if cooldown <= 0 {
		return &idleState{}
	}
	select {
	case <-ctx.Done():
		return &shutdownState{}
	case <-time.After(cooldown):
		return &idleState{}
	}
}
