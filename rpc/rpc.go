// Package rpc implements the coordinator's boundary with the aggregator
// sidecar process: a length-prefixed JSON-over-TCP transport carrying two
// methods, one in each direction. The numeric aggregation backend behind
// this boundary is opaque (§1 scope), this package only owns framing,
// reconnection, and routing the aggregator's fire-and-forget calls into
// the coordinator's request mux.
package rpc

import (
	"encoding/json"
	"fmt"
)

// frameVersion tags the wire shape of an envelope wrapping a Frame
// payload, letting a future coordinator release change that shape
// without breaking an older aggregator sidecar mid-deployment.
type frameVersion uint16

// currentFrameVersion is the only envelope shape this coordinator
// speaks today.
const currentFrameVersion frameVersion = 0

// envelope is the versioned wrapper every Frame payload travels in.
type envelope struct {
	Version frameVersion    `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// Method tags which of the two RPC calls a Frame carries.
type Method string

const (
	// MethodAggregate is the coordinator→aggregator call: fold one
	// participant's masked model and scalar into the running aggregate.
	MethodAggregate Method = "aggregate"
	// MethodAggregateReply is the aggregator's Ok|Err response to a
	// MethodAggregate call, correlated by RequestID.
	MethodAggregateReply Method = "aggregate_reply"
	// MethodEndTraining is the aggregator→coordinator fire-and-forget
	// notification that a client's local training finished.
	MethodEndTraining Method = "end_training"
)

// Frame is the wire envelope every RPC message is wrapped in: a u32
// big-endian length prefix (added by Transport) followed by this struct
// JSON-encoded via encode/decode's versioned envelope.
type Frame struct {
	Method    Method          `json:"method"`
	RequestID uint64          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// AggregatePayload is MethodAggregate's payload: a masked model vector
// and masked scalar, each already serialized through pet/mask's codec ,
// the RPC layer treats them as opaque bytes since the mask wire format,
// not JSON, is the contract the aggregator backend actually parses.
type AggregatePayload struct {
	MaskedModel  []byte `json:"masked_model"`
	MaskedScalar []byte `json:"masked_scalar"`
}

// AggregateReplyPayload is MethodAggregateReply's payload.
type AggregateReplyPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// EndTrainingPayload is MethodEndTraining's payload.
type EndTrainingPayload struct {
	ClientID string `json:"client_id"`
	Success  bool   `json:"success"`
}

// encode wraps v in the current envelope and marshals it as a Frame
// payload.
func encode(v interface{}) (json.RawMessage, error) {
	inner, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(envelope{Version: currentFrameVersion, Payload: inner})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// decode unwraps a Frame payload's envelope into v, rejecting any
// envelope version this coordinator does not speak.
func decode(payload json.RawMessage, v interface{}) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	if env.Version != currentFrameVersion {
		return fmt.Errorf("rpc: unsupported envelope version: %d", env.Version)
	}
	return json.Unmarshal(env.Payload, v)
}
