// Package mux implements the request dispatch plane between the HTTP
// façade and the phase state machine: participant messages arrive as
// Requests over a single channel, and the phase currently running reads
// them with a select against its own timers.
package mux

import (
	"sync"

	"github.com/xaynet-labs/pet-coordinator/identity"
	"github.com/xaynet-labs/pet-coordinator/mask"
)

// Tag identifies which participant message a Request carries, matching
// the wire message header's tag field.
type Tag int

const (
	// TagSum is a Sum-phase participant's sum message.
	TagSum Tag = iota + 1
	// TagUpdate is an Update-phase participant's model update message.
	TagUpdate
	// TagSum2 is a Sum2-phase participant's reconstructed mask.
	TagSum2
	// TagEndTraining is the aggregator's fire-and-forget end_training
	// notification, routed in by pet/rpc's Server rather than the HTTP
	// façade. No phase accepts it: each resolves it with
	// RejectWrongPhase, and the RPC server does not read that reply.
	TagEndTraining
)

// ReplyKind enumerates how a Request was resolved.
type ReplyKind int

const (
	// ReplyOk means the request was accepted.
	ReplyOk ReplyKind = iota
	// ReplyRejected means the request was refused for a protocol reason.
	ReplyRejected
	// ReplyChannelClosed means the Mux was closed before a phase read it.
	ReplyChannelClosed
	// ReplyInternal means an unexpected internal error occurred.
	ReplyInternal
)

// RejectReason enumerates why a request was rejected, surfaced to the
// HTTP layer as a machine-readable {code, reason} body.
type RejectReason int

const (
	// RejectNone is the zero value, used only when Kind != ReplyRejected.
	RejectNone RejectReason = iota
	// RejectNotEligible means the participant failed the eligibility check.
	RejectNotEligible
	// RejectWrongPhase means the message arrived outside its phase.
	RejectWrongPhase
	// RejectDuplicate means the participant already submitted this phase.
	RejectDuplicate
	// RejectMalformed means the payload failed to decode or validate.
	RejectMalformed
	// RejectDiscarded means the phase already has its configured
	// maximum number of accepts and is quietly discarding the excess,
	// per max_update's "Discarded" posture extended here to max_sum.
	RejectDiscarded
	// RejectNotSumParticipant means a Sum2 submission's key was never
	// recorded in the frozen SumDict.
	RejectNotSumParticipant
)

// Reply is the one-shot response a phase writes back to a Request's
// Reply channel.
type Reply struct {
	Kind   ReplyKind
	Reason RejectReason
}

// SumPayload is a Sum-phase participant's submission.
type SumPayload struct {
	PK         identity.PublicKey
	EphmPK     identity.EphemeralPublicKey
}

// UpdatePayload is an Update-phase participant's submission.
type UpdatePayload struct {
	PK            identity.PublicKey
	MaskedModel   mask.MaskVect
	MaskedScalar  mask.MaskUnit
	LocalSeedDict map[string][]byte
}

// Sum2Payload is a Sum2-phase participant's submission.
type Sum2Payload struct {
	PK   identity.PublicKey
	Mask mask.MaskObject
}

// EndTrainingPayload is the aggregator's notification that one client's
// local training run finished, successfully or not.
type EndTrainingPayload struct {
	ClientID string
	Success  bool
}

// Request is a tagged union over the participant message shapes plus the
// aggregator's end_training notification, carrying a one-shot reply
// channel. A phase must write exactly one Reply to it; callers block
// reading the channel until it does.
type Request struct {
	Tag         Tag
	Sum         *SumPayload
	Up          *UpdatePayload
	Sum2        *Sum2Payload
	EndTraining *EndTrainingPayload
	reply       chan Reply
	once        sync.Once
}

// NewRequest wraps one of the payload shapes into a Request with a
// buffered, single-use reply channel.
func NewRequest(tag Tag) *Request {
	return &Request{Tag: tag, reply: make(chan Reply, 1)}
}

// Resolve writes r as this Request's one and only Reply. Calling it more
// than once is a no-op, enforcing the send-by-consume guarantee even if
// a phase's bookkeeping accidentally resolves the same request twice.
func (r *Request) Resolve(reply Reply) {
	r.once.Do(func() {
		r.reply <- reply
	})
}

// Wait blocks until the request has been resolved and returns the Reply.
func (r *Request) Wait() Reply {
	return <-r.reply
}

// Mux is the single channel participant requests flow through. Phases
// read from Requests() with a select against their own timers.
type Mux struct {
	requests chan *Request
	closeMu  sync.Mutex
	closed   bool
}

// NewMux returns a Mux with the given channel buffer size.
func NewMux(buffer int) *Mux {
	return &Mux{requests: make(chan *Request, buffer)}
}

// Requests returns the channel phases read Requests from.
func (m *Mux) Requests() <-chan *Request {
	return m.requests
}

// Closed reports whether Close has already run, the signal the HTTP
// façade's health check uses without submitting a probe request.
func (m *Mux) Closed() bool {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	return m.closed
}

// Submit enqueues req, returning false if the Mux has already been
// closed, in which case the caller should resolve req itself with a
// ReplyChannelClosed result.
func (m *Mux) Submit(req *Request) bool {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	if m.closed {
		return false
	}
	m.requests <- req
	return true
}

// Close shuts the Mux down, draining any still-queued requests with a
// ReplyChannelClosed reply so no caller blocks forever on Wait.
func (m *Mux) Close() {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.requests)
	for req := range m.requests {
		req.Resolve(Reply{Kind: ReplyChannelClosed})
	}
}
