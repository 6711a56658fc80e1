package round

import (
	"errors"

	"github.com/xaynet-labs/pet-coordinator/mask"
)

// ErrAmbiguousMasks is returned when two or more distinct masks tie for
// the top submission count, any tie at the top fails the round, per the
// stability decision recorded in DESIGN.md.
var ErrAmbiguousMasks = errors.New("round: ambiguous masks at plurality")

// ErrNoMask is returned when Plurality is called on an empty MaskDict.
var ErrNoMask = errors.New("round: no masks submitted")

// maskCounts is a multiset keyed by MaskObject.Key: Sum2 submission
// counts only ever need a count per structural mask content, there is
// no other caller of this type, so it carries no type parameter.
type maskCounts struct {
	byKey map[string]int
	total int
}

func newMaskCounts() maskCounts {
	return maskCounts{byKey: make(map[string]int)}
}

func (c *maskCounts) add(key string) {
	c.byKey[key]++
	c.total++
}

func (c *maskCounts) count(key string) int {
	return c.byKey[key]
}

// len returns the total number of submissions recorded, counting repeats.
func (c *maskCounts) len() int {
	return c.total
}

// keys returns every distinct key recorded, in no particular order.
func (c *maskCounts) keys() []string {
	out := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		out = append(out, k)
	}
	return out
}

// MaskDict is a multiset over MaskObject submissions collected during
// Sum2, counted by structural equality over the full mask bytes (via
// MaskObject.Key) rather than pointer identity.
type MaskDict struct {
	counts maskCounts
	byKey  map[string]mask.MaskObject
}

// NewMaskDict returns an empty MaskDict.
func NewMaskDict() *MaskDict {
	return &MaskDict{
		counts: newMaskCounts(),
		byKey:  make(map[string]mask.MaskObject),
	}
}

// Add records one submission of m.
func (d *MaskDict) Add(m mask.MaskObject) {
	key := m.Key()
	d.counts.add(key)
	if _, ok := d.byKey[key]; !ok {
		d.byKey[key] = m
	}
}

// Len returns the number of submissions recorded (counting repeats).
func (d *MaskDict) Len() int {
	return d.counts.len()
}

// Plurality returns the strictly-unique top-count mask. It fails with
// ErrNoMask if nothing was submitted and ErrAmbiguousMasks if two or
// more distinct masks tie for the highest count.
func (d *MaskDict) Plurality() (mask.MaskObject, error) {
	if d.counts.len() == 0 {
		return mask.MaskObject{}, ErrNoMask
	}

	best := -1
	var bestKeys []string
	for _, key := range d.counts.keys() {
		c := d.counts.count(key)
		switch {
		case c > best:
			best = c
			bestKeys = []string{key}
		case c == best:
			bestKeys = append(bestKeys, key)
		}
	}

	if len(bestKeys) != 1 {
		return mask.MaskObject{}, ErrAmbiguousMasks
	}
	return d.byKey[bestKeys[0]], nil
}
