package outputs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/security-zone/internal/domain/zone"
)

// TestFileRegistry_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRegistry_NotFound(t *testing.T) {
	t.Parallel()

	registry := NewFileRegistry(filepath.Join(t.TempDir(), "missing.json"), "hall")

	values, err := registry.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, values)

	missing, err := registry.Missing(context.Background(), zone.AllOutputs)
	require.NoError(t, err)
	require.Equal(t, zone.AllOutputs, missing)

	err = registry.Write(context.Background(), map[zone.Output]bool{zone.Alarm: true})
	require.ErrorIs(t, err, zone.ErrMissingOutput)
}

// TestFileRegistry_EnsureWriteLoad ensures outputs are created off and updated in place.
func TestFileRegistry_EnsureWriteLoad(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "outputs.json")
	registry := NewFileRegistry(file, "hall")
	ctx := context.Background()

	threeOutputs := []zone.Output{zone.Surveillance, zone.Detection, zone.Alarm}
	require.NoError(t, registry.Ensure(ctx, threeOutputs))

	missing, err := registry.Missing(ctx, zone.AllOutputs)
	require.NoError(t, err)
	require.Equal(t, []zone.Output{zone.Intrusion}, missing)

	require.NoError(t, registry.Write(ctx, map[zone.Output]bool{zone.Surveillance: true, zone.Alarm: true}))
	require.ErrorIs(t, registry.Write(ctx, map[zone.Output]bool{zone.Intrusion: true}), zone.ErrMissingOutput)

	// Ensure keeps existing values.
	require.NoError(t, registry.Ensure(ctx, zone.AllOutputs))

	values, err := registry.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, map[zone.Output]bool{
		zone.Surveillance: true,
		zone.Detection:    false,
		zone.Intrusion:    false,
		zone.Alarm:        true,
	}, values)

	contents, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"hall"`)
}

// TestFileRegistry_Corrupted verifies decoding errors are surfaced.
func TestFileRegistry_Corrupted(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "outputs.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	_, err := NewFileRegistry(file, "hall").Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
