package model

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.SaveModel(ctx, "round-1", Global{Values: []float64{1, 2, 3}})
	require.NoError(t, err)

	got, err := s.LoadModel(ctx, "round-1")
	require.NoError(t, err)
	require.Equal(t, "round-1", got.RoundID)
	require.Equal(t, []float64{1, 2, 3}, got.Values)
}

func TestMemoryStore_LoadMissingReturnsErrNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.LoadModel(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_SaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "models")
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	m := Global{Values: []float64{0.5, -1.25, 3}}
	require.NoError(t, s.SaveModel(ctx, "round-7", m))

	got, err := s.LoadModel(ctx, "round-7")
	require.NoError(t, err)
	require.Equal(t, "round-7", got.RoundID)
	require.Equal(t, m.Values, got.Values)
}

func TestFileStore_LoadMissingReturnsErrNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.LoadModel(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}
