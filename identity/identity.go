// Package identity implements participant key material and the
// eligibility predicate that decides whether a given round seed selects a
// participant as a sum or update participant.
package identity

import (
	"crypto/ed25519"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// PublicKey identifies a participant by their Ed25519-style signing key.
type PublicKey = ed25519.PublicKey

// EphemeralPublicKey is a fresh per-round X25519-style key a sum
// participant generates to receive encrypted seed shares.
type EphemeralPublicKey [32]byte

// RoundSeed is the 32 bytes of entropy that gates eligibility and task
// selection for one round.
type RoundSeed [32]byte

const (
	// RoleSum is the eligibility role string for sum participants.
	RoleSum = "sum"
	// RoleUpdate is the eligibility role string for update participants.
	RoleUpdate = "update"
)

// IsEligible implements the coordinator-side half of the eligibility
// predicate: BLAKE2(round_seed ‖ role ‖ participant_pk) < ratio · 2^L.
//
// The source protocol additionally mixes in sig_over(role), a value only
// the participant can produce; verifying it is a client-SDK concern out
// of this spec's scope (§1). The coordinator instead re-derives the same
// deterministic digest from public inputs alone, which is sufficient
// here because round_seed, not the signature, is the predicate's only
// source of per-round unpredictability.
func IsEligible(seed RoundSeed, role string, pk PublicKey, ratio float64) bool {
	if ratio <= 0 {
		return false
	}
	if ratio >= 1 {
		return true
	}

	h, _ := blake2b.New256(nil)
	h.Write(seed[:])
	h.Write([]byte(role))
	h.Write(pk)
	digest := h.Sum(nil)

	value := new(big.Int).SetBytes(digest)

	// threshold = ratio * 2^256, computed with enough precision that the
	// comparison matches what a big.Float multiplication would give for
	// any ratio representable as a float64.
	const precisionBits = 256
	fratio := new(big.Float).SetPrec(precisionBits + 64).SetFloat64(ratio)
	maxVal := new(big.Float).SetPrec(precisionBits + 64).SetInt(new(big.Int).Lsh(big.NewInt(1), precisionBits))
	thresholdF := new(big.Float).SetPrec(precisionBits + 64).Mul(fratio, maxVal)
	threshold, _ := thresholdF.Int(nil)

	return value.Cmp(threshold) < 0
}

// NewRoundSeed wraps 32 bytes of caller-supplied entropy (normally from
// crypto/rand) as a RoundSeed.
func NewRoundSeed(b [32]byte) RoundSeed {
	return RoundSeed(b)
}
