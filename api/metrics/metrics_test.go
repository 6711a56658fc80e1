package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersAllCollectors(t *testing.T) {
	reg := NewRegistry()
	m, err := NewMetrics("pet_coordinator_test", reg)
	require.NoError(t, err)

	m.RoundsStarted().Inc()
	m.RoundsCompleted().Inc()
	m.RoundsFailed().WithLabelValues("ambiguous_masks").Inc()
	m.ParticipantsAccepted().WithLabelValues("sum").Inc()
	m.ParticipantsRejected().WithLabelValues("update", "seed_dict_key_mismatch").Inc()
	m.PhaseDuration().WithLabelValues("sum").Observe(0.5)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestNewMultiGatherer_AggregatesRegisteredGatherers(t *testing.T) {
	mg := NewMultiGatherer()
	reg := NewRegistry()
	_, err := NewMetrics("pet_coordinator_test2", reg)
	require.NoError(t, err)

	require.NoError(t, mg.Register("coordinator", reg))
	families, err := mg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
