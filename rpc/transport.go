package rpc

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
)

// maxFrameBytes bounds a single frame's payload to guard against a
// corrupt or malicious length prefix requesting an unbounded allocation.
const maxFrameBytes = 64 << 20

// Transport frames Frame values over a net.Conn as [u32 big-endian
// length][JSON body], matching the general shape of a length-prefixed
// handshake message translated to this spec's simpler unauthenticated
// case (§4.3; this RPC boundary carries no secret data, only integrity
// of delivery matters). Writes are safe for concurrent use by multiple
// goroutines; reads are not framed against interleaving, so callers
// should dedicate one reader goroutine per Transport.
type Transport struct {
	conn     net.Conn
	writeMu  sync.Mutex
	requests uint64
	reqMu    sync.Mutex
}

// NewTransport wraps an established net.Conn for frame-oriented I/O.
func NewTransport(conn net.Conn) *Transport {
	return &Transport{conn: conn}
}

// NextRequestID returns a fresh, monotonically increasing request id for
// correlating a MethodAggregate call with its MethodAggregateReply.
func (t *Transport) NextRequestID() uint64 {
	t.reqMu.Lock()
	defer t.reqMu.Unlock()
	t.requests++
	return t.requests
}

// WriteFrame encodes and writes one frame, safe for concurrent callers.
func (t *Transport) WriteFrame(f Frame) error {
	body, err := encode(f)
	if err != nil {
		return fmt.Errorf("rpc: encoding frame: %w", err)
	}
	if len(body) > maxFrameBytes {
		return fmt.Errorf("rpc: frame of %d bytes exceeds limit %d", len(body), maxFrameBytes)
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.conn.Write(prefix[:]); err != nil {
		return fmt.Errorf("rpc: writing length prefix: %w", err)
	}
	if _, err := t.conn.Write(body); err != nil {
		return fmt.Errorf("rpc: writing frame body: %w", err)
	}
	return nil
}

// ReadFrame blocks until one full frame has arrived and decodes it.
// Callers must not call ReadFrame concurrently from more than one
// goroutine on the same Transport.
func (t *Transport) ReadFrame() (Frame, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(t.conn, prefix[:]); err != nil {
		return Frame{}, err
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if n > maxFrameBytes {
		return Frame{}, fmt.Errorf("rpc: frame of %d bytes exceeds limit %d", n, maxFrameBytes)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(t.conn, body); err != nil {
		return Frame{}, fmt.Errorf("rpc: reading frame body: %w", err)
	}

	var f Frame
	if err := decode(body, &f); err != nil {
		return Frame{}, fmt.Errorf("rpc: decoding frame: %w", err)
	}
	return f, nil
}

// Close closes the underlying connection.
func (t *Transport) Close() error {
	return t.conn.Close()
}
