package round

import (
	"errors"
)

// ErrSeedDictKeyMismatch is returned when a LocalSeedDict's key set does
// not exactly equal the frozen SumDict's key set.
var ErrSeedDictKeyMismatch = errors.New("round: local seed dict keys do not match sum dict")

// ErrUnknownSumKey is returned when SeedDict.Merge is asked to record a
// contribution under a sum key absent from the SumDict it was built from.
var ErrUnknownSumKey = errors.New("round: sum key not present in sum dict")

// LocalSeedDict is one update participant's encrypted seed share, one
// entry per sum participant.
type LocalSeedDict map[string][]byte

// KeySet returns the key set of a LocalSeedDict for equality checks
// against the frozen SumDict.
func (d LocalSeedDict) KeySet() KeySet {
	s := NewKeySet(len(d))
	for k := range d {
		s.Add(k)
	}
	return s
}

// SeedDict is the coordinator-side aggregation of every accepted
// LocalSeedDict, keyed by sum participant then by contributing update
// participant.
type SeedDict struct {
	sumKeys KeySet
	entries map[string]map[string][]byte
	frozen  bool
}

// NewSeedDict builds a SeedDict whose outer keys are fixed to sumKeys ,
// the frozen SumDict's key set, per the invariant that every outer key
// must equal a SumDict key.
func NewSeedDict(sumKeys KeySet) *SeedDict {
	entries := make(map[string]map[string][]byte, sumKeys.Len())
	for _, k := range sumKeys.List() {
		entries[k] = make(map[string][]byte)
	}
	return &SeedDict{sumKeys: sumKeys, entries: entries}
}

// Merge validates that local's key set exactly matches the SumDict's key
// set, then records updatePk's contribution under every sum key.
func (d *SeedDict) Merge(updatePk string, local LocalSeedDict) error {
	if d.frozen {
		return ErrSumDictFrozen
	}
	if !local.KeySet().Equals(d.sumKeys) {
		return ErrSeedDictKeyMismatch
	}
	for sumPk, encSeed := range local {
		inner, ok := d.entries[sumPk]
		if !ok {
			return ErrUnknownSumKey
		}
		inner[updatePk] = encSeed
	}
	return nil
}

// Freeze closes the dict to further merges.
func (d *SeedDict) Freeze() {
	d.frozen = true
}

// UpdateKeysFor returns the set of update participants who have
// contributed a share for sumPk.
func (d *SeedDict) UpdateKeysFor(sumPk string) KeySet {
	inner, ok := d.entries[sumPk]
	s := NewKeySet(len(inner))
	if !ok {
		return s
	}
	for k := range inner {
		s.Add(k)
	}
	return s
}

// SharesFor returns sumPk's partial seed dict (update_pk → encrypted
// seed), the payload served by GET /seeds/{sum_pk_hex}.
func (d *SeedDict) SharesFor(sumPk string) (map[string][]byte, bool) {
	inner, ok := d.entries[sumPk]
	if !ok {
		return nil, false
	}
	out := make(map[string][]byte, len(inner))
	for k, v := range inner {
		out[k] = v
	}
	return out, true
}

// Len returns the number of distinct update participants who have
// contributed at least one share.
func (d *SeedDict) Len() int {
	seen := NewKeySet(0)
	for _, inner := range d.entries {
		for k := range inner {
			seen.Add(k)
		}
	}
	return seen.Len()
}
