package mux

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMux_SubmitAndResolve(t *testing.T) {
	m := NewMux(1)
	req := NewRequest(TagSum)

	require.True(t, m.Submit(req))

	got := <-m.Requests()
	require.Same(t, req, got)

	got.Resolve(Reply{Kind: ReplyOk})
	reply := req.Wait()
	require.Equal(t, ReplyOk, reply.Kind)
}

func TestRequest_ResolveIsIdempotent(t *testing.T) {
	req := NewRequest(TagUpdate)
	req.Resolve(Reply{Kind: ReplyOk})
	req.Resolve(Reply{Kind: ReplyInternal})

	reply := req.Wait()
	require.Equal(t, ReplyOk, reply.Kind)
}

func TestMux_CloseDrainsQueuedRequestsAsChannelClosed(t *testing.T) {
	m := NewMux(4)
	req := NewRequest(TagSum2)
	require.True(t, m.Submit(req))

	m.Close()

	reply := req.Wait()
	require.Equal(t, ReplyChannelClosed, reply.Kind)
}

func TestMux_SubmitAfterCloseReturnsFalse(t *testing.T) {
	m := NewMux(1)
	m.Close()

	req := NewRequest(TagSum)
	require.False(t, m.Submit(req))
}
