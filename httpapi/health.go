package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/xaynet-labs/pet-coordinator/api/health"
)

// healthChecker implements health.Checkable over the façade's own
// collaborators: whether the request mux is still open and whether a
// round has ever published parameters.
type healthChecker struct {
	s *Server
}

func (h healthChecker) Health(ctx context.Context) (health.Report, error) {
	start := time.Now()

	muxOpen := !h.s.mux.Closed()
	_, hasRound := h.s.services.RoundParams.Get()

	checks := []health.Check{
		{
			Name:     "mux_open",
			Healthy:  muxOpen,
			Duration: time.Since(start),
		},
		{
			Name:     "round_params",
			Healthy:  true, // absence of an active round is not itself unhealthy
			Details:  map[string]interface{}{"has_active_round": hasRound},
			Duration: time.Since(start),
		},
	}

	return health.Report{
		Healthy:  muxOpen,
		Checks:   checks,
		Duration: time.Since(start),
	}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checker := healthChecker{s: s}
	report, _ := checker.Health(r.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
