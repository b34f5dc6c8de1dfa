package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/repository/outputs"
	"github.com/oshokin/security-zone/internal/service/client"
	"github.com/oshokin/security-zone/internal/service/common"
)

// TestGRPC_Roundtrip starts the real controller and exercises client Set/Get with on-disk persistence.
func TestGRPC_Roundtrip(t *testing.T) {
	t.Parallel()

	hub := newFakeHub(t)
	hub.set(5, false)

	env := startController(t, &config.Config{
		Heartbeat: time.Hour,
		Hub:       hub.hubConfig(t),
		Zone:      config.ZoneConfig{Name: "office", Sensors: "5"},
	})

	ctx := context.Background()

	c, err := common.Dial(ctx, env.addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	actor := &zone.Actor{
		Hostname: "test-hostname",
		Username: "test-user",
	}

	snapshot, err := c.GetZoneState(ctx)
	require.NoError(t, err)
	require.Equal(t, "office", snapshot.Zone)
	require.False(t, snapshot.State.Armed)

	snapshot, err = c.SetSurveillance(ctx, actor, true)
	require.NoError(t, err)
	require.True(t, snapshot.State.Armed)
	require.Equal(t, "test-user@test-hostname", snapshot.State.LastActor.String())

	values, err := outputs.NewFileRegistry(env.outputsPath, "office").Load(ctx)
	require.NoError(t, err)
	require.True(t, values[zone.Surveillance])
}

// TestClient_ArmAndDisarm runs the zone-arm and zone-disarm flows against a live controller.
func TestClient_ArmAndDisarm(t *testing.T) {
	t.Parallel()

	hub := newFakeHub(t)

	env := startController(t, &config.Config{
		Heartbeat: time.Hour,
		Hub:       hub.hubConfig(t),
		Zone:      config.ZoneConfig{Sensors: "1"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Run(ctx, &client.Options{ConfigPath: env.cfgPath, Armed: true}))

	c, err := common.Dial(ctx, env.addr)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	snapshot, err := c.GetZoneState(ctx)
	require.NoError(t, err)
	require.True(t, snapshot.State.Armed)

	require.NoError(t, client.Run(ctx, &client.Options{ConfigPath: env.cfgPath, Armed: false}))

	snapshot, err = c.GetZoneState(ctx)
	require.NoError(t, err)
	require.Equal(t, zone.PhaseDisarmed, snapshot.Phase())
}
