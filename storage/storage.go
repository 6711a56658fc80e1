// Package storage abstracts persistence of per-round dictionary snapshots
// for observability and debugging. The phase state machine in pet/phase is
// the authoritative in-memory owner of SumDict/SeedDict/MaskDict; this is a
// side channel callers can inspect without reaching into a live Driver.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xaynet-labs/pet-coordinator/round"
)

// ErrNotFound is returned when no snapshot has been recorded for a round.
var ErrNotFound = errors.New("storage: not found")

// Snapshot captures one round's dictionaries at a point in time, usually
// just after each dictionary is frozen.
type Snapshot struct {
	RoundID  string
	SumKeys  []string
	SeedLen  int
	MaskLen  int
}

// Dictionaries abstracts persistence of per-round dictionary snapshots.
type Dictionaries interface {
	SaveSumDict(ctx context.Context, roundID string, d *round.SumDict) error
	SaveSeedDict(ctx context.Context, roundID string, d *round.SeedDict) error
	SaveMaskDict(ctx context.Context, roundID string, d *round.MaskDict) error
	Snapshot(ctx context.Context, roundID string) (Snapshot, error)
}

// MemoryDictionaries is the race-safe default Dictionaries implementation.
type MemoryDictionaries struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewMemoryDictionaries returns an empty MemoryDictionaries.
func NewMemoryDictionaries() *MemoryDictionaries {
	return &MemoryDictionaries{snapshots: make(map[string]Snapshot)}
}

func (m *MemoryDictionaries) entry(roundID string) Snapshot {
	s, ok := m.snapshots[roundID]
	if !ok {
		s = Snapshot{RoundID: roundID}
	}
	return s
}

func (m *MemoryDictionaries) SaveSumDict(_ context.Context, roundID string, d *round.SumDict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.entry(roundID)
	s.SumKeys = d.Keys().List()
	m.snapshots[roundID] = s
	return nil
}

func (m *MemoryDictionaries) SaveSeedDict(_ context.Context, roundID string, d *round.SeedDict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.entry(roundID)
	s.SeedLen = d.Len()
	m.snapshots[roundID] = s
	return nil
}

func (m *MemoryDictionaries) SaveMaskDict(_ context.Context, roundID string, d *round.MaskDict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.entry(roundID)
	s.MaskLen = d.Len()
	m.snapshots[roundID] = s
	return nil
}

func (m *MemoryDictionaries) Snapshot(_ context.Context, roundID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[roundID]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: round %q", ErrNotFound, roundID)
	}
	return s, nil
}
