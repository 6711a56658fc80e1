// Package httpapi is the HTTP façade participants and the aggregator's
// dashboard speak: six read-only GET routes backed by pet/fetcher, one
// POST /message route that turns a signed wire message into a mux.Request
// and blocks for its Reply, and a /metrics route exposing the
// coordinator's prometheus registry.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xaynet-labs/pet-coordinator/api/metrics"
	"github.com/xaynet-labs/pet-coordinator/fetcher"
	"github.com/xaynet-labs/pet-coordinator/logging"
	petmux "github.com/xaynet-labs/pet-coordinator/mux"
)

// Server is the HTTP façade's gorilla/mux router wrapped in an
// http.Server, shut down gracefully on context cancellation.
type Server struct {
	mux      *petmux.Mux
	services *fetcher.Services
	router   *mux.Router
	http     *http.Server
	log      logging.Logger
}

// NewServer builds the router and binds it to addr. gatherer is the
// coordinator's prometheus registry, served at /metrics.
func NewServer(addr string, m *petmux.Mux, services *fetcher.Services, gatherer metrics.Registry, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNoOpLogger()
	}
	s := &Server{mux: m, services: services, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/params", s.handleParams).Methods(http.MethodGet)
	r.HandleFunc("/sums", s.handleSums).Methods(http.MethodGet)
	r.HandleFunc("/seeds/{sum_pk_hex}", s.handleSeeds).Methods(http.MethodGet)
	r.HandleFunc("/length", s.handleLength).Methods(http.MethodGet)
	r.HandleFunc("/scalar", s.handleScalar).Methods(http.MethodGet)
	r.HandleFunc("/model", s.handleModel).Methods(http.MethodGet)
	r.HandleFunc("/message", s.handleMessage).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s.router = r

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Run starts serving and blocks until ctx is canceled, at which point it
// shuts down gracefully and returns nil (or the Serve error, if it wasn't
// caused by the graceful shutdown).
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("httpapi: listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("httpapi: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("httpapi: graceful shutdown: %w", err)
		}
		return nil
	}
}
