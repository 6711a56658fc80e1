package rpc

import (
	"context"
	"net"
	"time"

	"github.com/xaynet-labs/pet-coordinator/logging"
)

// retryInterval is the fixed 1-second reconnect interval §4.3 requires:
// "reconnect indefinitely with a 1-second retry interval, never exiting
// the process on transient failure."
const retryInterval = 1 * time.Second

// Client dials the aggregator's advertised address and never surfaces a
// connection error to its caller, per the design note in §9, a dropped
// aggregator connection is a normal state of the world, not a bug, so
// Dial simply keeps retrying until ctx is canceled or a connection
// succeeds.
type Client struct {
	addr string
	log  logging.Logger
}

// NewClient returns a Client that will dial addr.
func NewClient(addr string, log logging.Logger) *Client {
	return &Client{addr: addr, log: log}
}

// Dial blocks, retrying every retryInterval, until it establishes a
// connection or ctx is canceled. A canceled context is the only error
// Dial ever returns.
func (c *Client) Dial(ctx context.Context) (*Transport, error) {
	var dialer net.Dialer
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		conn, err := dialer.DialContext(ctx, "tcp", c.addr)
		if err == nil {
			return NewTransport(conn), nil
		}
		if c.log != nil {
			c.log.Debug("rpc: dial aggregator failed, retrying", "addr", c.addr, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
