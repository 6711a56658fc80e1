package httpapi

import (
	"errors"
	"net/http"

	"github.com/xaynet-labs/pet-coordinator/api"
	"github.com/xaynet-labs/pet-coordinator/mux"
)

// writeError writes status with the coordinator's standard
// {"success":false,"error":{...}} envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	_ = api.WriteError(w, status, errors.New(msg))
}

// statusForReject maps a protocol rejection reason to its HTTP status,
// per §7's "protocol rejection -> 4xx" taxonomy: the reason names what
// about the submission was wrong, the status tells the client whether
// retrying as-is could ever help.
func statusForReject(reason mux.RejectReason) int {
	switch reason {
	case mux.RejectNotEligible:
		return http.StatusForbidden
	case mux.RejectNotSumParticipant:
		return http.StatusForbidden
	case mux.RejectWrongPhase:
		return http.StatusConflict
	case mux.RejectDuplicate:
		return http.StatusConflict
	case mux.RejectMalformed:
		return http.StatusBadRequest
	case mux.RejectDiscarded:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

// messageForReject gives a human-readable reason string for the body.
func messageForReject(reason mux.RejectReason) string {
	switch reason {
	case mux.RejectNotEligible:
		return "participant not eligible for this round"
	case mux.RejectNotSumParticipant:
		return "key was not recorded as a sum participant this round"
	case mux.RejectWrongPhase:
		return "message does not match the phase currently running"
	case mux.RejectDuplicate:
		return "participant already submitted for this phase"
	case mux.RejectMalformed:
		return "payload failed to decode or validate"
	case mux.RejectDiscarded:
		return "phase has reached its participant cap"
	default:
		return "request rejected"
	}
}

// reasonForReject gives the machine-readable code a client can branch
// on without string-matching messageForReject's text, per §7's
// "protocol rejection -> 4xx with machine-readable reason code."
func reasonForReject(reason mux.RejectReason) string {
	switch reason {
	case mux.RejectNotEligible:
		return "not_eligible"
	case mux.RejectNotSumParticipant:
		return "not_sum_participant"
	case mux.RejectWrongPhase:
		return "wrong_phase"
	case mux.RejectDuplicate:
		return "duplicate"
	case mux.RejectMalformed:
		return "malformed"
	case mux.RejectDiscarded:
		return "discarded"
	default:
		return "rejected"
	}
}

// writeReply renders a mux.Reply as an HTTP response, per §7: phase
// failure (the Mux closing out from under a blocked request) maps to
// 503, unexpected internal faults to 500, and ReplyOk to 200 with no
// body, callers that need a body write it themselves before calling
// writeReply only for the rejection and failure cases. roundID tags a
// rejection's Response with the round the submission targeted.
func writeReply(w http.ResponseWriter, roundID string, reply mux.Reply) {
	switch reply.Kind {
	case mux.ReplyOk:
		w.WriteHeader(http.StatusOK)
	case mux.ReplyRejected:
		_ = api.WriteRejection(w, statusForReject(reply.Reason), roundID, reasonForReject(reply.Reason), messageForReject(reply.Reason))
	case mux.ReplyChannelClosed:
		writeError(w, http.StatusServiceUnavailable, "coordinator is shutting down")
	case mux.ReplyInternal:
		writeError(w, http.StatusInternalServerError, "internal coordinator error")
	default:
		writeError(w, http.StatusInternalServerError, "unknown reply kind")
	}
}
