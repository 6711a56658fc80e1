package phase

import "context"

// Aggregator is the outbound half of the aggregator RPC boundary the
// Update phase forwards every accepted contribution to, mirrored by
// *rpc.AggregateCaller in production and faked in tests. It exists as an
// interface here so the phase package does not import pet/rpc.
type Aggregator interface {
	Aggregate(ctx context.Context, maskedModel, maskedScalar []byte) error
}
