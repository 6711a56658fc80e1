// Package health reports the coordinator's liveness over the round
// state machine it is driving, rather than generic process health:
// a coordinator with its request mux closed or no round ever started
// is "unhealthy" in a way a process-level liveness probe would miss.
package health

import (
	"context"
	"time"
)

// Checkable is implemented by anything able to produce a Report, the
// façade's HTTP GET /health handler is the only caller.
type Checkable interface {
	Health(context.Context) (Report, error)
}

// Report is the coordinator's health snapshot: Healthy reflects the
// request mux, Checks breaks that down by individual signal (mux open,
// a round has been published at least once).
type Report struct {
	Healthy  bool          `json:"healthy"`
	Checks   []Check       `json:"checks,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Check is one named signal contributing to a Report.
type Check struct {
	Name     string                 `json:"name"`
	Healthy  bool                   `json:"healthy"`
	Error    string                 `json:"error,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Duration time.Duration          `json:"duration"`
}
