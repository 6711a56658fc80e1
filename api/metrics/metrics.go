// Copyright (C) 2020-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registerer is an interface for registering prometheus metrics
type Registerer interface {
	prometheus.Registerer
}

// Registry is an interface for prometheus registry
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewRegistry creates a new prometheus registry
func NewRegistry() Registry {
	return prometheus.NewRegistry()
}

// MultiGatherer is a prometheus gatherer that can gather metrics from multiple sources
type MultiGatherer interface {
	prometheus.Gatherer

	// Register adds a new gatherer to this multi-gatherer
	Register(string, prometheus.Gatherer) error
}

// multiGatherer implements MultiGatherer
type multiGatherer struct {
	gatherers map[string]prometheus.Gatherer
}

// NewMultiGatherer creates a new multi-gatherer
func NewMultiGatherer() MultiGatherer {
	return &multiGatherer{
		gatherers: make(map[string]prometheus.Gatherer),
	}
}

// Register adds a new gatherer
func (mg *multiGatherer) Register(name string, gatherer prometheus.Gatherer) error {
	mg.gatherers[name] = gatherer
	return nil
}

// Gather implements prometheus.Gatherer
func (mg *multiGatherer) Gather() ([]*dto.MetricFamily, error) {
	var result []*dto.MetricFamily
	for _, g := range mg.gatherers {
		metrics, err := g.Gather()
		if err != nil {
			return nil, err
		}
		result = append(result, metrics...)
	}
	return result, nil
}

// Metrics is the coordinator's round-level instrumentation: how many
// rounds complete, how many fail and why, and how many participants each
// phase accepts or rejects.
type Metrics interface {
	// RoundsStarted counts Idle→Sum transitions.
	RoundsStarted() prometheus.Counter

	// RoundsCompleted counts successful Unmask→Idle transitions.
	RoundsCompleted() prometheus.Counter

	// RoundsFailed counts transitions into Error, labeled by kind.
	RoundsFailed() *prometheus.CounterVec

	// ParticipantsAccepted counts accepted Sum/Update/Sum2 messages,
	// labeled by phase.
	ParticipantsAccepted() *prometheus.CounterVec

	// ParticipantsRejected counts rejected messages, labeled by phase
	// and reject reason.
	ParticipantsRejected() *prometheus.CounterVec

	// PhaseDuration observes the wall-clock time each phase spends in
	// Run, labeled by phase name.
	PhaseDuration() *prometheus.HistogramVec
}

// NewMetrics registers and returns the coordinator's Metrics, namespaced
// under namespace (normally "pet_coordinator").
func NewMetrics(namespace string, registerer prometheus.Registerer) (Metrics, error) {
	m := &metrics{
		roundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Number of PET rounds started (Idle to Sum).",
		}),
		roundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_completed_total",
			Help:      "Number of PET rounds that reached Unmask successfully.",
		}),
		roundsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_failed_total",
			Help:      "Number of PET rounds that transitioned to Error, by kind.",
		}, []string{"kind"}),
		participantsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_accepted_total",
			Help:      "Number of accepted participant messages, by phase.",
		}, []string{"phase"}),
		participantsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_rejected_total",
			Help:      "Number of rejected participant messages, by phase and reason.",
		}, []string{"phase", "reason"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall-clock duration of each phase's Run, by phase.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
	}

	for _, c := range []prometheus.Collector{
		m.roundsStarted, m.roundsCompleted, m.roundsFailed,
		m.participantsAccepted, m.participantsRejected, m.phaseDuration,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

type metrics struct {
	roundsStarted        prometheus.Counter
	roundsCompleted      prometheus.Counter
	roundsFailed         *prometheus.CounterVec
	participantsAccepted *prometheus.CounterVec
	participantsRejected *prometheus.CounterVec
	phaseDuration        *prometheus.HistogramVec
}

func (m *metrics) RoundsStarted() prometheus.Counter            { return m.roundsStarted }
func (m *metrics) RoundsCompleted() prometheus.Counter           { return m.roundsCompleted }
func (m *metrics) RoundsFailed() *prometheus.CounterVec          { return m.roundsFailed }
func (m *metrics) ParticipantsAccepted() *prometheus.CounterVec  { return m.participantsAccepted }
func (m *metrics) ParticipantsRejected() *prometheus.CounterVec  { return m.participantsRejected }
func (m *metrics) PhaseDuration() *prometheus.HistogramVec       { return m.phaseDuration }
