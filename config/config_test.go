package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Valid())
}

func TestLoad_NoPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestValid_RejectsMaxSumBelowMinSum(t *testing.T) {
	cfg := Default()
	cfg.PET.MinSum = 10
	cfg.PET.MaxSum = 5
	require.ErrorIs(t, cfg.Valid(), ErrInvalidMaxSum)
}

func TestValid_RejectsSumRatioOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.PET.Sum = 1.5
	require.ErrorIs(t, cfg.Valid(), ErrInvalidSumRatio)
}

func TestValid_RejectsInvertedPhaseTimes(t *testing.T) {
	cfg := Default()
	cfg.PET.PhaseTimesMin = cfg.PET.PhaseTimesMax * 2
	require.ErrorIs(t, cfg.Valid(), ErrInvalidPhaseTimes)
}

func TestValid_RejectsMissingCoordinatorAddress(t *testing.T) {
	cfg := Default()
	cfg.RPC.CoordinatorAddress = ""
	require.ErrorIs(t, cfg.Valid(), ErrMissingCoordAddr)
}
