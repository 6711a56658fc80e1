package httpapi

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xaynet-labs/pet-coordinator/api/metrics"
	"github.com/xaynet-labs/pet-coordinator/eventbus"
	"github.com/xaynet-labs/pet-coordinator/fetcher"
	"github.com/xaynet-labs/pet-coordinator/identity"
	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
	petmux "github.com/xaynet-labs/pet-coordinator/mux"
	"github.com/xaynet-labs/pet-coordinator/round"
)

func testCfg() mask.Config {
	return mask.Config{Bound: mask.BoundB0}
}

func newTestServer(t *testing.T) (*Server, *petmux.Mux, *eventbus.Bus) {
	t.Helper()
	m := petmux.NewMux(8)
	bus := eventbus.NewBus()
	store := model.NewMemoryStore()
	services := fetcher.NewServices(bus, store)
	registry := metrics.NewRegistry()
	s := NewServer("127.0.0.1:0", m, services, registry, nil)
	return s, m, bus
}

func TestHandleParams_NoContentBeforePublish(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/params", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleParams_ReturnsPublishedRound(t *testing.T) {
	s, _, bus := newTestServer(t)
	seed := identity.NewRoundSeed([32]byte{1, 2, 3})
	bus.RoundParams.Publish("round-1", round.Params{ID: "round-1", RoundSeed: seed, SumRatio: 0.5, UpdateRatio: 0.5, ModelLength: 3})

	req := httptest.NewRequest(http.MethodGet, "/params", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp paramsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "round-1", resp.ID)
	require.Equal(t, hex.EncodeToString(seed[:]), resp.RoundSeed)
	require.Equal(t, 3, resp.ModelLength)
}

func TestHandleSeeds_NotFoundForUnknownKey(t *testing.T) {
	s, _, bus := newTestServer(t)
	sumKeys := round.NewSumDict()
	require.NoError(t, sumKeys.Insert([]byte("sum-pk-00000000000000000000000000"), [32]byte{}))
	seedDict := round.NewSeedDict(sumKeys.Keys())
	bus.SeedDict.Publish("round-1", *seedDict)

	req := httptest.NewRequest(http.MethodGet, "/seeds/"+hex.EncodeToString([]byte("unknown")), nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSeeds_ReturnsSharesForKnownKey(t *testing.T) {
	s, _, bus := newTestServer(t)
	sumPk := "sum-pk-00000000000000000000000000"
	sumKeys := round.NewSumDict()
	require.NoError(t, sumKeys.Insert([]byte(sumPk), [32]byte{}))
	seedDict := round.NewSeedDict(sumKeys.Keys())
	require.NoError(t, seedDict.Merge("update-pk", round.LocalSeedDict{sumPk: []byte("enc-share")}))
	bus.SeedDict.Publish("round-1", *seedDict)

	req := httptest.NewRequest(http.MethodGet, "/seeds/"+hex.EncodeToString([]byte(sumPk)), nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.Bytes()
	count := binary.BigEndian.Uint32(body[:4])
	require.Equal(t, uint32(1), count)
}

func TestHandleScalarAndLength(t *testing.T) {
	s, _, bus := newTestServer(t)
	cfg := testCfg()
	bus.Scalar.Publish("round-1", mask.NewMaskUnit(cfg, big.NewInt(7)))
	bus.MaskLength.Publish("round-1", 3)

	req := httptest.NewRequest(http.MethodGet, "/scalar", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	decoded, _, err := mask.UnitFromBytes(rec.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, int64(7), decoded.Value.Int64())

	req = httptest.NewRequest(http.MethodGet, "/length", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint64(3), binary.BigEndian.Uint64(rec.Body.Bytes()))
}

func TestHandleModel_NoContentThenServed(t *testing.T) {
	m := petmux.NewMux(8)
	bus := eventbus.NewBus()
	store := model.NewMemoryStore()
	services := fetcher.NewServices(bus, store)
	registry := metrics.NewRegistry()
	s := NewServer("127.0.0.1:0", m, services, registry, nil)

	req := httptest.NewRequest(http.MethodGet, "/model", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.NoError(t, store.SaveModel(req.Context(), "round-1", model.Global{Values: []float64{1, 2, 3}}))
	bus.Model.Publish("round-1", model.Global{RoundID: "round-1"})

	req = httptest.NewRequest(http.MethodGet, "/model", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func buildSumMessage(t *testing.T, pub ed25519.PublicKey, priv ed25519.PrivateKey) []byte {
	t.Helper()
	var ephm [32]byte
	copy(ephm[:], []byte("ephemeral-key-bytes-000000000000"))
	return buildMessage(t, pub, priv, petmux.TagSum, ephm[:])
}

func buildMessage(t *testing.T, pub ed25519.PublicKey, priv ed25519.PrivateKey, tag petmux.Tag, payload []byte) []byte {
	t.Helper()
	var coordinatorPK [32]byte
	tagLen := make([]byte, 5)
	tagLen[0] = byte(tag)
	binary.BigEndian.PutUint32(tagLen[1:], uint32(len(payload)))
	signed := append(append([]byte{}, tagLen...), payload...)
	sig := ed25519.Sign(priv, signed)

	out := make([]byte, 0, headerLen+len(payload))
	out = append(out, pub...)
	out = append(out, coordinatorPK[:]...)
	out = append(out, sig...)
	out = append(out, signed...)
	return out
}

func TestHandleMessage_RejectsWrongPhase(t *testing.T) {
	s, _, _ := newTestServer(t)
	go func() {
		req := <-s.mux.Requests()
		req.Resolve(petmux.Reply{Kind: petmux.ReplyRejected, Reason: petmux.RejectWrongPhase})
	}()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	body := buildSumMessage(t, pub, priv)

	req := httptest.NewRequest(http.MethodPost, "/message", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleMessage_RejectsBadSignature(t *testing.T) {
	s, _, _ := newTestServer(t)
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	body := buildSumMessage(t, pub, priv)
	body[len(body)-1] ^= 0xFF // corrupt the trailing payload byte post-signing

	req := httptest.NewRequest(http.MethodPost, "/message", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMessage_AcceptsValidSum(t *testing.T) {
	s, _, _ := newTestServer(t)
	go func() {
		req := <-s.mux.Requests()
		require.NotNil(t, req.Sum)
		req.Resolve(petmux.Reply{Kind: petmux.ReplyOk})
	}()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	body := buildSumMessage(t, pub, priv)

	req := httptest.NewRequest(http.MethodPost, "/message", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
