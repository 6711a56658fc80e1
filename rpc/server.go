package rpc

import (
	"context"
	"fmt"
	"net"

	"github.com/xaynet-labs/pet-coordinator/logging"
	"github.com/xaynet-labs/pet-coordinator/mux"
)

// Server listens for the aggregator sidecar to dial in and accepts
// exactly one connection at a time (§4.3 concurrency), a second
// incoming connection waits in the OS accept queue until the first
// closes. Each accepted connection's inbound end_training calls are
// routed into the shared mux.Mux. Connections() announces each accepted
// connection; outbound aggregate calls do not use it, they travel over
// AggregateCaller's own dialed connection.
type Server struct {
	listener net.Listener
	mux      *mux.Mux
	log      logging.Logger
	conns    chan *Transport
}

// NewServer starts listening on bindAddr. It does not yet accept; call
// Serve to run the accept loop. Because the listener is bound here, it
// exists before any Client dials out, and an aggregator that dials in
// before Serve runs waits in the accept queue.
func NewServer(bindAddr string, requestMux *mux.Mux, log logging.Logger) (*Server, error) {
	l, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("rpc: listening on %s: %w", bindAddr, err)
	}
	return &Server{
		listener: l,
		mux:      requestMux,
		log:      log,
		conns:    make(chan *Transport),
	}, nil
}

// Addr returns the server's bound address, useful when bindAddr was
// "host:0" and the OS chose a port.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Connections yields a Transport each time the aggregator dials in.
// Exactly one Transport is live at a time; the next is sent only after
// the previous connection's read loop exits.
func (s *Server) Connections() <-chan *Transport {
	return s.conns
}

// Serve accepts aggregator connections one at a time until ctx is
// canceled or the listener is closed. For each connection it starts an
// inbound-frame loop that routes MethodEndTraining calls into the mux
// and skips anything else arriving on this direction; the
// aggregate/aggregate_reply exchange runs over AggregateCaller's own
// connection, not this one.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("rpc: accept: %w", err)
			}
		}

		t := NewTransport(conn)
		select {
		case s.conns <- t:
		case <-ctx.Done():
			conn.Close()
			return nil
		}

		s.drainInbound(ctx, t)
	}
}

// drainInbound reads end_training frames off t until it errors or
// closes, routing each into the mux. It returns control to Serve's
// accept loop once the connection is done, matching the "accepts one
// connection at a time" posture.
func (s *Server) drainInbound(ctx context.Context, t *Transport) {
	for {
		frame, err := t.ReadFrame()
		if err != nil {
			if s.log != nil {
				s.log.Debug("rpc: aggregator connection closed", "error", err)
			}
			return
		}

		if frame.Method != MethodEndTraining {
			continue
		}

		var payload EndTrainingPayload
		if err := decode(frame.Payload, &payload); err != nil {
			if s.log != nil {
				s.log.Warn("rpc: malformed end_training payload", "error", err)
			}
			continue
		}

		req := mux.NewRequest(mux.TagEndTraining)
		req.EndTraining = &mux.EndTrainingPayload{
			ClientID: payload.ClientID,
			Success:  payload.Success,
		}
		if !s.mux.Submit(req) {
			return
		}
		// Fire-and-forget: the phase resolves req but nobody here
		// waits on the reply, matching §4.3's "fire-and-forget from
		// the aggregator's side".
		go req.Wait()

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}
