package zone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/security-zone/internal/domain/zone"
)

func TestSnapshotStruct_PreservesState(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 6, 7, 8, 9, 123456789, time.UTC)

	original := domain.Snapshot{
		Zone:    "hall",
		Outputs: domain.AllOutputs,
		State: domain.State{
			Armed:              true,
			Detection:          true,
			Intrusion:          true,
			LastSensorActiveAt: at,
			DetectionChangedAt: at.Add(-time.Second),
			ArmedChangedAt:     at.Add(-time.Hour),
			LastActor:          &domain.Actor{Hostname: "pc", Username: "bob"},
		},
		UpdatedAt: at,
	}

	encoded := SnapshotToStruct(&original)
	require.Equal(t, "armed-intrusion-pending", encoded.GetFields()[fieldPhase].GetStringValue())

	decoded, err := SnapshotFromStruct(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestSnapshotStruct_OmitsZeroValues(t *testing.T) {
	t.Parallel()

	encoded := SnapshotToStruct(&domain.Snapshot{Zone: "z"})

	fields := encoded.GetFields()
	require.NotContains(t, fields, fieldUpdatedAt)
	require.NotContains(t, fields, fieldLastActor)
	require.Equal(t, "disarmed", fields[fieldPhase].GetStringValue())
}

func TestParseSetSurveillanceRequest(t *testing.T) {
	t.Parallel()

	armed, actor, err := ParseSetSurveillanceRequest(NewSetSurveillanceRequest(false, &domain.Actor{
		Hostname: "host",
		Username: "user",
	}))
	require.NoError(t, err)
	require.False(t, armed)
	require.Equal(t, "user@host", actor.String())

	_, _, err = ParseSetSurveillanceRequest(nil)
	require.ErrorIs(t, err, ErrArmedRequired)

	_, _, err = ParseSetSurveillanceRequest(NewSetSurveillanceRequest(true, &domain.Actor{Hostname: "host"}))
	require.ErrorIs(t, err, ErrActorRequired)
}
