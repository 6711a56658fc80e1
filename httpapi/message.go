package httpapi

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/mux"
)

// headerLen is the fixed-size prefix every POST /message body carries:
// participant_pk(32) || coordinator_pk(32) || signature(64) || tag(1) ||
// length(4), per §6's external interface table.
const headerLen = 32 + 32 + 64 + 1 + 4

// ErrShortMessage means the body was too small to hold the fixed header.
var ErrShortMessage = errors.New("httpapi: message shorter than header")

// ErrLengthMismatch means the header's length field didn't match the
// payload actually present, or a nested length-prefixed field ran past
// the end of its enclosing buffer.
var ErrLengthMismatch = errors.New("httpapi: declared length does not match payload")

// ErrSignatureInvalid means the coordinator-addressed signature failed to
// verify over tag||length||payload.
var ErrSignatureInvalid = errors.New("httpapi: signature invalid")

// ErrUnknownTag means the header's tag byte named no known message kind.
var ErrUnknownTag = errors.New("httpapi: unknown message tag")

// parsedMessage is a POST /message body split into its header fields and
// decoded payload, ready for submission to the mux.
type parsedMessage struct {
	ParticipantPK ed25519.PublicKey
	CoordinatorPK [32]byte
	Tag           mux.Tag
	Request       *mux.Request
}

// parseMessage validates the header, verifies the participant's signature
// over tag||length||payload, and decodes the tagged payload into a
// mux.Request ready for submission.
func parseMessage(body []byte) (*parsedMessage, error) {
	if len(body) < headerLen {
		return nil, ErrShortMessage
	}

	participantPK := append(ed25519.PublicKey(nil), body[0:32]...)
	var coordinatorPK [32]byte
	copy(coordinatorPK[:], body[32:64])
	signature := body[64:128]
	tagByte := body[128]
	length := binary.BigEndian.Uint32(body[129:133])
	payload := body[headerLen:]

	if uint32(len(payload)) != length {
		return nil, ErrLengthMismatch
	}

	signed := body[128:] // tag || length || payload
	if !ed25519.Verify(participantPK, signed, signature) {
		return nil, ErrSignatureInvalid
	}

	tag := mux.Tag(tagByte)
	req := mux.NewRequest(tag)

	switch tag {
	case mux.TagSum:
		if len(payload) < 32 {
			return nil, fmt.Errorf("httpapi: sum payload too short: %w", ErrLengthMismatch)
		}
		var ephm [32]byte
		copy(ephm[:], payload[:32])
		req.Sum = &mux.SumPayload{PK: participantPK, EphmPK: ephm}
	case mux.TagUpdate:
		up, err := decodeUpdatePayload(participantPK, payload)
		if err != nil {
			return nil, err
		}
		req.Up = up
	case mux.TagSum2:
		maskObj, err := mask.FromBytes(payload)
		if err != nil {
			return nil, fmt.Errorf("httpapi: decoding sum2 mask: %w", err)
		}
		req.Sum2 = &mux.Sum2Payload{PK: participantPK, Mask: maskObj}
	default:
		return nil, ErrUnknownTag
	}

	return &parsedMessage{ParticipantPK: participantPK, CoordinatorPK: coordinatorPK, Tag: tag, Request: req}, nil
}

// decodeUpdatePayload decodes an Update message body:
// masked_model (self-framed MaskVect) || masked_scalar (self-framed
// MaskUnit) || seed_dict_count(u32 BE) || count * (sum_pk(32) ||
// share_len(u32 BE) || share).
func decodeUpdatePayload(pk ed25519.PublicKey, payload []byte) (*mux.UpdatePayload, error) {
	maskedModel, n, err := mask.VectFromBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("httpapi: decoding masked model: %w", err)
	}
	rest := payload[n:]

	maskedScalar, m, err := mask.UnitFromBytes(rest)
	if err != nil {
		return nil, fmt.Errorf("httpapi: decoding masked scalar: %w", err)
	}
	rest = rest[m:]

	if len(rest) < 4 {
		return nil, fmt.Errorf("httpapi: update payload missing seed dict count: %w", ErrLengthMismatch)
	}
	count := binary.BigEndian.Uint32(rest[:4])
	rest = rest[4:]

	seeds := make(map[string][]byte, count)
	for i := uint32(0); i < count; i++ {
		if len(rest) < 36 {
			return nil, fmt.Errorf("httpapi: update payload truncated seed share %d: %w", i, ErrLengthMismatch)
		}
		sumPK := string(rest[:32])
		shareLen := binary.BigEndian.Uint32(rest[32:36])
		rest = rest[36:]
		if uint32(len(rest)) < shareLen {
			return nil, fmt.Errorf("httpapi: update payload truncated seed share %d: %w", i, ErrLengthMismatch)
		}
		seeds[sumPK] = append([]byte(nil), rest[:shareLen]...)
		rest = rest[shareLen:]
	}

	return &mux.UpdatePayload{
		PK:            pk,
		MaskedModel:   maskedModel,
		MaskedScalar:  maskedScalar,
		LocalSeedDict: seeds,
	}, nil
}
