package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFields_IncludesRoundAndPhase(t *testing.T) {
	fields := Fields("round-1", "sum", "count", 3)
	require.Equal(t, []interface{}{"round_id", "round-1", "phase", "sum", "count", 3}, fields)
}

func TestNewNoOpLogger_DoesNotPanic(t *testing.T) {
	l := NewNoOpLogger()
	require.NotPanics(t, func() {
		l.Info("hello", "key", "value")
	})
}
