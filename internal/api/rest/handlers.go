package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/logger"
)

const (
	// maxBodySize bounds request payloads.
	maxBodySize = 4 << 10

	// httpUsername is recorded when a command carries no actor.
	httpUsername = "http"
)

type handler struct {
	service Service
	history HistoryReader
}

// zoneView is the JSON rendering of a zone snapshot.
type zoneView struct {
	Zone               string          `json:"zone"`
	Phase              string          `json:"phase"`
	Outputs            map[string]bool `json:"outputs"`
	LastSensorActiveAt *time.Time      `json:"last_sensor_active_at,omitempty"`
	DetectionChangedAt *time.Time      `json:"detection_changed_at,omitempty"`
	ArmedChangedAt     *time.Time      `json:"armed_changed_at,omitempty"`
	LastActor          *zone.Actor     `json:"last_actor,omitempty"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
}

// surveillanceRequest is the PUT /api/zone/surveillance payload.
type surveillanceRequest struct {
	Armed *bool       `json:"armed"`
	Actor *zone.Actor `json:"actor,omitempty"`
}

type errorView struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getZone(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.service.Snapshot()
	writeJSON(w, http.StatusOK, newZoneView(&snapshot))
}

func (h *handler) putSurveillance(w http.ResponseWriter, r *http.Request) {
	var req surveillanceRequest

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.Armed == nil {
		writeError(w, http.StatusBadRequest, "armed is required")
		return
	}

	actor := req.Actor
	if actor == nil || actor.Username == "" {
		actor = &zone.Actor{
			Hostname: remoteHost(r),
			Username: httpUsername,
		}
	}

	snapshot, err := h.service.SetSurveillance(r.Context(), *req.Armed, actor)
	if err != nil {
		logger.ErrorKV(r.Context(), "HTTP surveillance command failed", "actor", actor.String(), "error", err)

		status := http.StatusServiceUnavailable
		if errors.Is(err, r.Context().Err()) {
			status = http.StatusRequestTimeout
		}

		writeError(w, status, "zone controller is not available")

		return
	}

	writeJSON(w, http.StatusOK, newZoneView(&snapshot))
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}

		limit = parsed
	}

	snapshot := h.service.Snapshot()

	entries, err := h.history.Recent(r.Context(), snapshot.Zone, limit)
	if err != nil {
		logger.ErrorKV(r.Context(), "Unable to read zone history", "error", err)
		writeError(w, http.StatusInternalServerError, "history is not available")

		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func newZoneView(snapshot *zone.Snapshot) zoneView {
	outputs := make(map[string]bool, len(snapshot.Outputs))
	for o, on := range snapshot.Values() {
		outputs[o.String()] = on
	}

	return zoneView{
		Zone:               snapshot.Zone,
		Phase:              snapshot.Phase().String(),
		Outputs:            outputs,
		LastSensorActiveAt: timePtr(snapshot.State.LastSensorActiveAt),
		DetectionChangedAt: timePtr(snapshot.State.DetectionChangedAt),
		ArmedChangedAt:     timePtr(snapshot.State.ArmedChangedAt),
		LastActor:          snapshot.State.LastActor,
		UpdatedAt:          timePtr(snapshot.UpdatedAt),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorView{Error: message})
}
