package round

import "golang.org/x/exp/maps"

// KeySet is an unordered set of participant public keys, addressed by
// their raw key bytes reinterpreted as a string. It backs every exact
// key-set comparison this protocol makes: the frozen SumDict's key
// list, a LocalSeedDict's key list checked against it, and which update
// participants have contributed a share for a given sum key.
type KeySet map[string]struct{}

// NewKeySet returns an empty KeySet sized for size entries.
func NewKeySet(size int) KeySet {
	if size < 0 {
		size = 0
	}
	return make(KeySet, size)
}

// KeySetOf returns a KeySet containing exactly keys.
func KeySetOf(keys ...string) KeySet {
	s := NewKeySet(len(keys))
	s.Add(keys...)
	return s
}

// Add records every key in keys as a member.
func (s KeySet) Add(keys ...string) {
	for _, k := range keys {
		s[k] = struct{}{}
	}
}

// Contains reports whether key is a member.
func (s KeySet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Len returns the number of keys in the set.
func (s KeySet) Len() int {
	return len(s)
}

// List returns the set's keys in no particular order.
func (s KeySet) List() []string {
	return maps.Keys(s)
}

// Equals reports whether s and other contain exactly the same keys, the
// check the Update phase's SeedDictKeyMismatch rejection is built on
// (§3's "local_seed_dict keys == current SumDict keys").
func (s KeySet) Equals(other KeySet) bool {
	return maps.Equal(s, other)
}
