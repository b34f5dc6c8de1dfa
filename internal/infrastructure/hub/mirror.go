package hub

import (
	"context"

	"github.com/oshokin/security-zone/internal/domain/zone"
)

// Switcher issues switch commands to the hub.
type Switcher interface {
	SetOutput(ctx context.Context, idx int, on bool) error
}

// Mirror copies zone output changes onto existing hub switches so the hub UI
// shows the zone state. It never drives a physical actuator of its own.
type Mirror struct {
	switcher Switcher
	switches map[zone.Output]int
}

// NewMirror creates a mirror for the provided output to switch mapping.
func NewMirror(switcher Switcher, switches map[zone.Output]int) *Mirror {
	return &Mirror{
		switcher: switcher,
		switches: switches,
	}
}

// Name identifies the publisher in logs.
func (m *Mirror) Name() string {
	return "hub-mirror"
}

// Publish switches the mirrored device for the event output, if any.
func (m *Mirror) Publish(ctx context.Context, event *zone.Event) error {
	idx, ok := m.switches[event.Output]
	if !ok {
		return nil
	}

	return m.switcher.SetOutput(ctx, idx, event.On)
}

// Close releases nothing; the hub client is stateless.
func (m *Mirror) Close() error {
	return nil
}
