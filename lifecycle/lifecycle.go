// Package lifecycle wires one coordinator process together: the phase
// state machine, the participant-facing HTTP façade, and both halves of
// the aggregator RPC link, then runs all of them under a single
// errgroup so any one's fatal error brings the whole process down
// cleanly, the way the teacher's node package composes its consensus
// engine, API server, and network layer under one supervisor.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/xaynet-labs/pet-coordinator/api/metrics"
	"github.com/xaynet-labs/pet-coordinator/config"
	"github.com/xaynet-labs/pet-coordinator/eventbus"
	"github.com/xaynet-labs/pet-coordinator/fetcher"
	"github.com/xaynet-labs/pet-coordinator/httpapi"
	"github.com/xaynet-labs/pet-coordinator/logging"
	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
	"github.com/xaynet-labs/pet-coordinator/mux"
	"github.com/xaynet-labs/pet-coordinator/phase"
	"github.com/xaynet-labs/pet-coordinator/rpc"
	"github.com/xaynet-labs/pet-coordinator/storage"
)

// muxBuffer sizes the shared request channel between the HTTP façade,
// the inbound RPC server, and the phase driver.
const muxBuffer = 256

// Coordinator owns every collaborator one running coordinator process
// needs and runs them together until ctx is canceled.
type Coordinator struct {
	cfg     config.Config
	log     logging.Logger
	metrics metrics.Metrics
	gather  metrics.Registry

	requestMux *mux.Mux
	bus        *eventbus.Bus
	store      model.Store
	dicts      storage.Dictionaries

	driver     *phase.Driver
	httpServer *httpapi.Server
	rpcServer  *rpc.Server
	aggregator *rpc.AggregateCaller
}

// New builds a Coordinator from cfg. maskCfg and modelLen describe the
// model being trained, a deployment constant outside the per-round
// tunables cfg carries. store persists each round's global model; a nil
// store defaults to an in-memory one, suitable only for local testing.
func New(cfg config.Config, maskCfg mask.Config, modelLen int, store model.Store, log logging.Logger) (*Coordinator, error) {
	if log == nil {
		log = logging.NewNoOpLogger()
	}
	if store == nil {
		store = model.NewMemoryStore()
	}

	registry := metrics.NewRegistry()
	m, err := metrics.NewMetrics("pet_coordinator", registry)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: registering metrics: %w", err)
	}

	requestMux := mux.NewMux(muxBuffer)
	bus := eventbus.NewBus()
	dicts := storage.NewMemoryDictionaries()

	rpcServer, err := rpc.NewServer(cfg.RPC.BindAddress, requestMux, log)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: starting rpc server: %w", err)
	}
	aggregator := rpc.NewAggregateCaller(cfg.RPC.CoordinatorAddress, log)

	driver := phase.NewDriver(requestMux, bus, cfg.PET, maskCfg, modelLen, aggregator, store, dicts, m, log)

	services := fetcher.NewServices(bus, store)
	httpServer := httpapi.NewServer(cfg.API.BindAddress, requestMux, services, registry, log)

	return &Coordinator{
		cfg:        cfg,
		log:        log,
		metrics:    m,
		gather:     registry,
		requestMux: requestMux,
		bus:        bus,
		store:      store,
		dicts:      dicts,
		driver:     driver,
		httpServer: httpServer,
		rpcServer:  rpcServer,
		aggregator: aggregator,
	}, nil
}

// Run races every collaborator against ctx with an errgroup, the first
// to finish triggering orderly shutdown of the rest, and returns the
// process exit code this run earned: 0 if ctx was canceled (the normal
// SIGINT/shutdown-request path) with no subsystem error, 2 if a
// subsystem failed outright.
func (c *Coordinator) Run(ctx context.Context) int {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.driver.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return c.rpcServer.Serve(gctx)
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case _, ok := <-c.rpcServer.Connections():
				if !ok {
					return nil
				}
				c.log.Info("lifecycle: aggregator connected")
			}
		}
	})

	g.Go(func() error {
		c.aggregator.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return c.httpServer.Run(gctx)
	})

	err := g.Wait()
	c.requestMux.Close()
	_ = c.rpcServer.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		c.log.Error("lifecycle: subsystem failed", "error", err)
		return 2
	}
	return 0
}
