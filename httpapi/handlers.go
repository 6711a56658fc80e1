package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// paramsResponse is the JSON body for GET /params. RoundSeed is hex rather
// than the raw [32]byte array JSON would otherwise produce.
type paramsResponse struct {
	ID          string  `json:"id"`
	RoundSeed   string  `json:"round_seed"`
	SumRatio    float64 `json:"sum_ratio"`
	UpdateRatio float64 `json:"update_ratio"`
	ModelLength int     `json:"model_length"`
}

// maxMessageBytes bounds a POST /message body, generous enough for a
// large masked model vector without letting an unbounded client body
// exhaust memory.
const maxMessageBytes = 256 << 20

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	params, ok := s.services.RoundParams.Get()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	resp := paramsResponse{
		ID:          params.ID,
		RoundSeed:   hex.EncodeToString(params.RoundSeed[:]),
		SumRatio:    params.SumRatio,
		UpdateRatio: params.UpdateRatio,
		ModelLength: params.ModelLength,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleSums(w http.ResponseWriter, r *http.Request) {
	dict, ok := s.services.SumDict.Get()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeBinary(w, encodeSumDict(dict))
}

func (s *Server) handleSeeds(w http.ResponseWriter, r *http.Request) {
	sumPkHex := mux.Vars(r)["sum_pk_hex"]
	shares, ok, found, err := s.services.SeedDict.SharesFor(sumPkHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "sum_pk_hex is not a known sum participant this round")
		return
	}
	writeBinary(w, encodeSeedShares(shares))
}

func (s *Server) handleLength(w http.ResponseWriter, r *http.Request) {
	length, ok := s.services.MaskLength.Get()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeBinary(w, encodeLength(length))
}

func (s *Server) handleScalar(w http.ResponseWriter, r *http.Request) {
	scalar, ok := s.services.Scalar.Get()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeBinary(w, encodeScalar(scalar))
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	global, ok, err := s.services.Model.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeBinary(w, encodeModel(global))
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxMessageBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "message exceeds maximum size")
		return
	}

	msg, err := parseMessage(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.mux.Submit(msg.Request) {
		writeError(w, http.StatusServiceUnavailable, "coordinator is shutting down")
		return
	}

	roundID := ""
	if params, ok := s.services.RoundParams.Get(); ok {
		roundID = params.ID
	}
	writeReply(w, roundID, msg.Request.Wait())
}

func writeBinary(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(b)
}
