package phase

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xaynet-labs/pet-coordinator/eventbus"
	"github.com/xaynet-labs/pet-coordinator/model"
	"github.com/xaynet-labs/pet-coordinator/mux"
)

func freshKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

// TestDriver_SumRejectsDuplicateKey exercises the Sum phase's
// duplicate-key rejection path: with a sum ratio of 1 every key is
// eligible, so the second submission of the same key is refused only as
// a duplicate.
func TestDriver_SumRejectsDuplicateKey(t *testing.T) {
	m := mux.NewMux(4)
	bus := eventbus.NewBus()
	cfg := testConfig()
	cfg.MinSum = 5 // kept unreachable so the phase stays open for the duplicate resubmission
	cfg.PhaseTimesMax = 500 * time.Millisecond
	maskCfg := testMaskConfig()

	d := NewDriver(m, bus, cfg, maskCfg, 2, fakeAggregator{}, model.NewMemoryStore(), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	pk := freshKey(t)

	first := mux.NewRequest(mux.TagSum)
	first.Sum = &mux.SumPayload{PK: pk}
	require.True(t, m.Submit(first))
	require.Equal(t, mux.Reply{Kind: mux.ReplyOk}, first.Wait())

	second := mux.NewRequest(mux.TagSum)
	second.Sum = &mux.SumPayload{PK: pk}
	require.True(t, m.Submit(second))
	require.Equal(t, mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectDuplicate}, second.Wait())
}

// TestDriver_SumRejectsBeyondMaxSum submits one more Sum message than
// max_sum allows and expects the excess to be discarded rather than
// accepted or left to block the phase's cap.
func TestDriver_SumRejectsBeyondMaxSum(t *testing.T) {
	m := mux.NewMux(8)
	bus := eventbus.NewBus()
	cfg := testConfig()
	cfg.MinSum = 5 // kept unreachable so the phase stays open long enough to see both messages
	cfg.MaxSum = 1
	cfg.PhaseTimesMax = 500 * time.Millisecond
	maskCfg := testMaskConfig()

	d := NewDriver(m, bus, cfg, maskCfg, 2, fakeAggregator{}, model.NewMemoryStore(), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	first := mux.NewRequest(mux.TagSum)
	first.Sum = &mux.SumPayload{PK: freshKey(t)}
	require.True(t, m.Submit(first))
	require.Equal(t, mux.Reply{Kind: mux.ReplyOk}, first.Wait())

	second := mux.NewRequest(mux.TagSum)
	second.Sum = &mux.SumPayload{PK: freshKey(t)}
	require.True(t, m.Submit(second))
	require.Equal(t, mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectDiscarded}, second.Wait())
}

// TestDriver_WrongPhaseMessageRejected submits an Update message while
// the driver is still in Sum and expects RejectWrongPhase.
func TestDriver_WrongPhaseMessageRejected(t *testing.T) {
	m := mux.NewMux(4)
	bus := eventbus.NewBus()
	cfg := testConfig()
	cfg.MinSum = 5 // keep Sum open long enough to receive the Update message
	cfg.PhaseTimesMax = 2 * time.Second
	maskCfg := testMaskConfig()

	d := NewDriver(m, bus, cfg, maskCfg, 2, fakeAggregator{}, model.NewMemoryStore(), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	req := mux.NewRequest(mux.TagUpdate)
	req.Up = &mux.UpdatePayload{PK: freshKey(t)}
	require.True(t, m.Submit(req))
	require.Equal(t, mux.Reply{Kind: mux.ReplyRejected, Reason: mux.RejectWrongPhase}, req.Wait())
}
