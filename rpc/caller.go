package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xaynet-labs/pet-coordinator/logging"
)

// ErrNotConnected is returned by Aggregate when no aggregator connection
// exists and the wait passed to Aggregate expires before one appears.
var ErrNotConnected = errors.New("rpc: no aggregator connection")

// connectPollInterval is how often Aggregate polls for a freshly
// (re)established connection while waiting out a caller's deadline.
const connectPollInterval = 50 * time.Millisecond

// AggregateCaller owns the Client side of the aggregator link: it keeps a
// connection to the aggregator's listening address alive forever,
// reconnecting on any read or dial failure, and exposes a synchronous
// Aggregate call that sends a MethodAggregate frame and waits for its
// correlated MethodAggregateReply.
//
// Per §4.3/§9, connection loss is never surfaced as a bug, Run retries
// silently. Scenario 5 ("kill the aggregator mid-Update") resolves here:
// Aggregate keeps polling for a live connection until the caller's own
// context deadline, rather than failing the instant the link drops, so a
// brief aggregator restart doesn't fail every in-flight Update.
type AggregateCaller struct {
	client  *Client
	log     logging.Logger
	current atomic.Pointer[Transport]
	nextID  atomic.Uint64
	pending sync.Map // uint64 -> chan AggregateReplyPayload
}

// NewAggregateCaller returns a caller that will dial addr.
func NewAggregateCaller(addr string, log logging.Logger) *AggregateCaller {
	return &AggregateCaller{client: NewClient(addr, log), log: log}
}

// Run dials and redials the aggregator until ctx is canceled, routing
// every MethodAggregateReply it reads to the pending Aggregate call that
// is waiting on its RequestID. It returns only when ctx is canceled.
func (a *AggregateCaller) Run(ctx context.Context) {
	for ctx.Err() == nil {
		t, err := a.client.Dial(ctx)
		if err != nil {
			return
		}
		a.current.Store(t)
		a.readLoop(t)
		a.current.Store(nil)
		t.Close()
	}
}

func (a *AggregateCaller) readLoop(t *Transport) {
	for {
		frame, err := t.ReadFrame()
		if err != nil {
			if a.log != nil {
				a.log.Debug("rpc: aggregator link read failed, reconnecting", "error", err)
			}
			return
		}
		if frame.Method != MethodAggregateReply {
			continue
		}
		var payload AggregateReplyPayload
		if err := decode(frame.Payload, &payload); err != nil {
			continue
		}
		if ch, ok := a.pending.LoadAndDelete(frame.RequestID); ok {
			ch.(chan AggregateReplyPayload) <- payload
		}
	}
}

// Aggregate sends maskedModel/maskedScalar to the aggregator and blocks
// until it replies Ok, replies Err, or ctx is done, whichever comes
// first. A connection that drops after the call was sent does not end
// the wait early; the call then returns when ctx is done. If no connection exists yet,
// Aggregate polls for one until ctx expires, returning ErrNotConnected
// only once ctx itself is exhausted.
func (a *AggregateCaller) Aggregate(ctx context.Context, maskedModel, maskedScalar []byte) error {
	t, err := a.waitConnected(ctx)
	if err != nil {
		return err
	}

	payload, err := encode(AggregatePayload{MaskedModel: maskedModel, MaskedScalar: maskedScalar})
	if err != nil {
		return fmt.Errorf("rpc: encoding aggregate payload: %w", err)
	}

	id := a.nextID.Add(1)
	reply := make(chan AggregateReplyPayload, 1)
	a.pending.Store(id, reply)
	defer a.pending.Delete(id)

	if err := t.WriteFrame(Frame{Method: MethodAggregate, RequestID: id, Payload: payload}); err != nil {
		return fmt.Errorf("rpc: sending aggregate call: %w", err)
	}

	select {
	case p := <-reply:
		if !p.OK {
			return fmt.Errorf("rpc: aggregator rejected aggregate call: %s", p.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AggregateCaller) waitConnected(ctx context.Context) (*Transport, error) {
	if t := a.current.Load(); t != nil {
		return t, nil
	}

	ticker := time.NewTicker(connectPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ErrNotConnected
		case <-ticker.C:
			if t := a.current.Load(); t != nil {
				return t, nil
			}
		}
	}
}
