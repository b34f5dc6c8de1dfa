package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/service/common"
)

// TestZone_EscalatesAndDisarms arms the zone, trips a sensor and disarms it again.
func TestZone_EscalatesAndDisarms(t *testing.T) {
	t.Parallel()

	hub := newFakeHub(t)
	hub.set(3, false)
	hub.set(4, false)

	hubCfg := hub.hubConfig(t)
	hubCfg.Mirror = map[string]int{"alarm": 90}

	env := startController(t, &config.Config{
		Heartbeat: 50 * time.Millisecond,
		Hub:       hubCfg,
		History:   config.HistoryConfig{Enabled: true},
		Zone: config.ZoneConfig{
			Name:           "warehouse",
			Sensors:        "3,4",
			Delays:         "15,0,60",
			IntrusionStage: true,
		},
	})

	ctx := context.Background()

	c, err := common.Dial(ctx, env.addr)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	actor := &zone.Actor{Hostname: "panel", Username: "guard"}

	_, err = c.SetSurveillance(ctx, actor, true)
	require.NoError(t, err)

	hub.set(4, true)

	require.Eventually(t, func() bool {
		snapshot, err := c.GetZoneState(ctx)
		return err == nil && snapshot.Phase() == zone.PhaseAlarm
	}, 3*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return hub.switchState(90) == "On"
	}, 3*time.Second, 20*time.Millisecond)

	snapshot, err := c.SetSurveillance(ctx, actor, false)
	require.NoError(t, err)
	require.False(t, snapshot.State.Detection)
	require.False(t, snapshot.State.Intrusion)
	require.False(t, snapshot.State.Alarm)

	resp, err := http.Get("http://" + env.httpAddr + "/api/zone/history?limit=100") //nolint:noctx // Test request.
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []struct {
		Output string `json:"output"`
		On     bool   `json:"on"`
		Source string `json:"source"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))

	seen := map[string]bool{}
	for _, entry := range entries {
		seen[entry.Output+"/"+entry.Source] = true
	}

	require.True(t, seen["alarm/heartbeat"])
	require.True(t, seen["alarm/command"])
	require.True(t, seen["surveillance/startup"])
}

// TestZone_RESTCommand arms the zone over HTTP.
func TestZone_RESTCommand(t *testing.T) {
	t.Parallel()

	hub := newFakeHub(t)

	env := startController(t, &config.Config{
		Heartbeat: time.Hour,
		Hub:       hub.hubConfig(t),
		Zone:      config.ZoneConfig{Sensors: "8"},
	})

	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodPut,
		"http://"+env.httpAddr+"/api/zone/surveillance",
		strings.NewReader(`{"armed":true,"actor":{"hostname":"tablet","username":"alice"}}`),
	)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view struct {
		Phase   string          `json:"phase"`
		Outputs map[string]bool `json:"outputs"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Equal(t, "armed-clear", view.Phase)
	require.True(t, view.Outputs["surveillance"])
	require.NotContains(t, view.Outputs, "intrusion")
}
