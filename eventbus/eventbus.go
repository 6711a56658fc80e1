// Package eventbus implements the fan-out plane fetcher services read
// from: single-writer topics publishing immutable snapshots that any
// number of listeners can read without blocking the writer or each
// other. Sharing a *T between writer and readers is Go's answer to the
// reference-counted-payload pattern: the garbage collector keeps the
// value alive for as long as any listener still points at it.
package eventbus

import "sync/atomic"

// Kind tags whether an Update carries a fresh value or marks the
// previous value withdrawn.
type Kind int

const (
	// KindNew carries a freshly published value.
	KindNew Kind = iota
	// KindInvalidate marks the topic as having no current value.
	KindInvalidate
)

// Update is the tagged union a Topic publishes and a Listener reads.
type Update[T any] struct {
	Kind    Kind
	RoundID string
	Value   *T
}

// Topic is a single-writer, many-reader broadcast cell. Publish and
// Invalidate swap an atomic pointer; readers never block on a writer
// and never block each other.
type Topic[T any] struct {
	current atomic.Pointer[Update[T]]
}

// NewTopic returns an empty Topic with no current value.
func NewTopic[T any]() *Topic[T] {
	t := &Topic[T]{}
	t.current.Store(&Update[T]{Kind: KindInvalidate})
	return t
}

// Publish makes v the topic's current value, stamped with roundID.
func (t *Topic[T]) Publish(roundID string, v T) {
	t.current.Store(&Update[T]{Kind: KindNew, RoundID: roundID, Value: &v})
}

// Invalidate withdraws the topic's current value.
func (t *Topic[T]) Invalidate(roundID string) {
	t.current.Store(&Update[T]{Kind: KindInvalidate, RoundID: roundID})
}

// NewListener returns a Listener reading this topic.
func (t *Topic[T]) NewListener() *Listener[T] {
	return &Listener[T]{topic: t}
}

// Listener reads a Topic's latest value. It holds no buffering state of
// its own: every call to GetLatest reflects the topic's current value at
// call time.
type Listener[T any] struct {
	topic *Topic[T]
}

// GetLatest returns the topic's current Update synchronously and without
// blocking.
func (l *Listener[T]) GetLatest() Update[T] {
	return *l.topic.current.Load()
}
