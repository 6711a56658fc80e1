// Package round holds the per-round data model: frozen round parameters
// and the three coordinator dictionaries (SumDict, SeedDict, MaskDict)
// defined in the protocol's data model.
package round

import (
	"errors"

	"github.com/xaynet-labs/pet-coordinator/identity"
	"github.com/xaynet-labs/pet-coordinator/mask"
)

// Sentinel validation errors, in the style of a typed Valid() method with
// package-level error variables.
var (
	ErrInvalidSumRatio    = errors.New("round: sum_ratio must be in (0,1)")
	ErrInvalidUpdateRatio = errors.New("round: update_ratio must be in (0,1)")
	ErrInvalidModelLength = errors.New("round: model_length must be positive")
)

// Params are the round parameters published at the Idle→Sum transition
// and frozen for the lifetime of the round.
type Params struct {
	ID          string
	RoundSeed   identity.RoundSeed
	SumRatio    float64
	UpdateRatio float64
	MaskConfig  mask.Config
	ModelLength int
}

// Valid validates the parameters, matching the sentinel-error, ordered
// check convention used for the consensus tuning parameters this type is
// modeled on.
func (p Params) Valid() error {
	if p.SumRatio <= 0 || p.SumRatio >= 1 {
		return ErrInvalidSumRatio
	}
	if p.UpdateRatio <= 0 || p.UpdateRatio >= 1 {
		return ErrInvalidUpdateRatio
	}
	if p.ModelLength <= 0 {
		return ErrInvalidModelLength
	}
	return nil
}
