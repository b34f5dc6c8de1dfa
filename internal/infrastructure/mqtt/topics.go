package mqtt

import (
	"strings"

	"github.com/oshokin/security-zone/internal/domain/zone"
)

// Availability payloads.
const (
	availabilityOnline  = "online"
	availabilityOffline = "offline"
)

// Topics builds the topic names of one zone.
type Topics struct {
	// Prefix is the root segment.
	Prefix string
	// Zone is the zone name segment.
	Zone string
}

// State returns the retained state topic of an output.
func (t Topics) State(output zone.Output) string {
	return t.join(output.String())
}

// Events returns the topic receiving JSON events.
func (t Topics) Events() string {
	return t.join("events")
}

// Availability returns the retained availability topic.
func (t Topics) Availability() string {
	return t.join("availability")
}

// join builds prefix/zone/segment, dropping characters MQTT reserves.
func (t Topics) join(segment string) string {
	return strings.Join([]string{sanitize(t.Prefix), sanitize(t.Zone), segment}, "/")
}

// sanitize removes wildcard and separator characters from a topic segment.
func sanitize(segment string) string {
	return strings.NewReplacer("/", "_", "#", "_", "+", "_", " ", "_").Replace(strings.TrimSpace(segment))
}
