package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/security-zone/internal/domain/zone"
)

// openTestRepository opens a repository in a temporary directory.
func openTestRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

// TestRepository_PublishRecent records events and reads them back newest first.
func TestRepository_PublishRecent(t *testing.T) {
	t.Parallel()

	repo := openTestRepository(t)
	ctx := context.Background()
	start := time.Date(2026, time.March, 1, 22, 0, 0, 0, time.UTC)

	for i, output := range []zone.Output{zone.Surveillance, zone.Detection, zone.Alarm} {
		event := &zone.Event{
			ID:     fmt.Sprintf("event-%d", i),
			Zone:   "hall",
			Output: output,
			On:     true,
			At:     start.Add(time.Duration(i) * time.Second),
			Source: zone.SourceHeartbeat,
			Phase:  zone.PhaseAlarm.String(),
		}

		if output == zone.Surveillance {
			event.Source = zone.SourceCommand
			event.Actor = &zone.Actor{Hostname: "panel", Username: "keeper"}
		}

		require.NoError(t, repo.Publish(ctx, event))
	}

	require.NoError(t, repo.Publish(ctx, &zone.Event{
		ID: "other-zone", Zone: "garage", Output: zone.Alarm, At: start, Source: zone.SourceHeartbeat,
	}))

	entries, err := repo.Recent(ctx, "hall", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "alarm", entries[0].Output)
	require.Equal(t, "detection", entries[1].Output)
	require.True(t, entries[0].On)
	require.Equal(t, start.Add(2*time.Second), entries[0].At)

	entries, err = repo.Recent(ctx, "hall", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "keeper@panel", entries[2].Actor)
	require.Equal(t, "command", entries[2].Source)
}

// TestRepository_RequiresID rejects events without id.
func TestRepository_RequiresID(t *testing.T) {
	t.Parallel()

	repo := openTestRepository(t)
	require.ErrorIs(t, repo.Publish(context.Background(), &zone.Event{Zone: "hall"}), errEventIDRequired)
	require.Equal(t, "history", repo.Name())
}
