package round

import (
	"errors"

	"github.com/xaynet-labs/pet-coordinator/identity"
)

// ErrDuplicateSumKey is returned when a sum participant's public key is
// already present in the SumDict.
var ErrDuplicateSumKey = errors.New("round: duplicate sum participant key")

// ErrSumDictFrozen is returned when a write is attempted after Freeze.
var ErrSumDictFrozen = errors.New("round: sum dict is frozen")

// SumDict maps each sum participant's signing key to the ephemeral key
// they generated for this round. It is writable only during the Sum
// phase and is frozen wholesale at the Sum→Update transition.
type SumDict struct {
	entries map[string]identity.EphemeralPublicKey
	order   []string
	frozen  bool
}

// NewSumDict returns an empty, writable SumDict.
func NewSumDict() *SumDict {
	return &SumDict{entries: make(map[string]identity.EphemeralPublicKey)}
}

// Insert records pk → ephmPk, rejecting a key already present and any
// write after Freeze.
func (d *SumDict) Insert(pk identity.PublicKey, ephmPk identity.EphemeralPublicKey) error {
	if d.frozen {
		return ErrSumDictFrozen
	}
	key := string(pk)
	if _, exists := d.entries[key]; exists {
		return ErrDuplicateSumKey
	}
	d.entries[key] = ephmPk
	d.order = append(d.order, key)
	return nil
}

// Contains reports whether pk is a known sum participant.
func (d *SumDict) Contains(pk identity.PublicKey) bool {
	_, ok := d.entries[string(pk)]
	return ok
}

// Len returns the number of entries collected so far.
func (d *SumDict) Len() int {
	return len(d.entries)
}

// Freeze closes the dict to further writes. Idempotent.
func (d *SumDict) Freeze() {
	d.frozen = true
}

// Frozen reports whether the dict has been closed.
func (d *SumDict) Frozen() bool {
	return d.frozen
}

// Keys returns the set of sum participant public keys, in the encoding
// used as map keys internally (raw key bytes as a string).
func (d *SumDict) Keys() KeySet {
	s := NewKeySet(len(d.order))
	s.Add(d.order...)
	return s
}

// Entries returns a defensive copy of the pk → ephemeral-key mapping.
func (d *SumDict) Entries() map[string]identity.EphemeralPublicKey {
	out := make(map[string]identity.EphemeralPublicKey, len(d.entries))
	for k, v := range d.entries {
		out[k] = v
	}
	return out
}
