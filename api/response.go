package api

import (
	"encoding/json"
	"net/http"
)

// Response is the coordinator's standard HTTP envelope, every handler
// under httpapi wraps its body in this shape so a client can always
// check Success before looking at Result. RoundID is set whenever the
// response concerns a specific round's state (round params, a protocol
// rejection raised while a phase was running); it is empty for
// round-agnostic endpoints like /health.
type Response struct {
	Success bool        `json:"success"`
	RoundID string      `json:"round_id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is the Response error payload. Reason carries a machine-readable
// rejection code (the RejectReason a protocol submission failed with,
// lowercased and snake-cased) so a client can branch on it without
// string-matching Message, per §7's "protocol rejection -> 4xx with
// machine-readable reason code."
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// WriteJSON writes v as status with the standard Content-Type header.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes status with a Response carrying err's message and
// no reason code, for faults that are not protocol rejections (phase
// failure, internal errors, malformed requests caught before mux
// routing).
func WriteError(w http.ResponseWriter, status int, err error) error {
	return WriteJSON(w, status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: err.Error(),
		},
	})
}

// WriteRejection writes status with a Response carrying a machine
// readable reason code alongside its human message, for §7 protocol
// rejections raised out of a running phase (not eligible, wrong phase,
// duplicate submission, and so on). roundID is the round the rejected
// submission targeted.
func WriteRejection(w http.ResponseWriter, status int, roundID, reason, message string) error {
	return WriteJSON(w, status, Response{
		Success: false,
		RoundID: roundID,
		Error: &Error{
			Code:    status,
			Message: message,
			Reason:  reason,
		},
	})
}

// WriteSuccess writes 200 with result, optionally scoped to roundID.
func WriteSuccess(w http.ResponseWriter, roundID string, result interface{}) error {
	return WriteJSON(w, http.StatusOK, Response{
		Success: true,
		RoundID: roundID,
		Result:  result,
	})
}
