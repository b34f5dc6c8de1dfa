package integration

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/service/controller"
)

// fakeHub serves the hub JSON API with switchable sensors.
type fakeHub struct {
	mu       sync.Mutex
	sensors  map[int]bool
	switched map[int]string
	server   *httptest.Server
}

func newFakeHub(t *testing.T) *fakeHub {
	t.Helper()

	hub := &fakeHub{
		sensors:  map[int]bool{},
		switched: map[int]string{},
	}

	hub.server = httptest.NewServer(http.HandlerFunc(hub.serve))
	t.Cleanup(hub.server.Close)

	return hub
}

func (h *fakeHub) serve(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	query := r.URL.Query()
	body := map[string]any{"status": "OK"}

	switch query.Get("type") {
	case "devices":
		devices := make([]map[string]string, 0, len(h.sensors))
		for idx, on := range h.sensors {
			status := "Off"
			if on {
				status = "On"
			}

			devices = append(devices, map[string]string{"idx": strconv.Itoa(idx), "Name": "sensor", "Status": status})
		}

		body["result"] = devices
	case "command":
		idx, _ := strconv.Atoi(query.Get("idx"))
		h.switched[idx] = query.Get("switchcmd")
	default:
		body["status"] = "ERR"
	}

	_ = json.NewEncoder(w).Encode(body)
}

func (h *fakeHub) set(idx int, on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sensors[idx] = on
}

func (h *fakeHub) switchState(idx int) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.switched[idx]
}

// hubConfig points the zone at the fake hub.
func (h *fakeHub) hubConfig(t *testing.T) config.HubConfig {
	t.Helper()

	u, err := url.Parse(h.server.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return config.HubConfig{
		Address: u.Hostname(),
		Port:    port,
		Timeout: time.Second,
	}
}

// reservePort returns a free local TCP address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// controllerEnv is a running controller with its files.
type controllerEnv struct {
	cfgPath     string
	outputsPath string
	addr        string
	httpAddr    string
}

// startController saves cfg, runs the controller and stops it on cleanup.
func startController(t *testing.T, cfg *config.Config) *controllerEnv {
	t.Helper()

	dir := t.TempDir()
	env := &controllerEnv{
		cfgPath:     filepath.Join(dir, "settings.yaml"),
		outputsPath: filepath.Join(dir, "outputs.json"),
		addr:        reservePort(t),
		httpAddr:    reservePort(t),
	}

	cfg.ServerAddress = env.addr
	cfg.HTTPAddress = env.httpAddr

	if cfg.History.Enabled {
		cfg.History.Path = filepath.Join(dir, "history.db")
	}

	require.NoError(t, config.Save(env.cfgPath, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- controller.Run(ctx, &controller.Options{
			ConfigPath:    env.cfgPath,
			ListenAddress: env.addr,
			OutputsFile:   env.outputsPath,
			AllowMultiple: true,
		})
	}()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	// Wait until the REST surface answers.
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + env.httpAddr + "/health") //nolint:noctx // Test probe.
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	return env
}
