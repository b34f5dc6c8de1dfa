package zone

import "time"

// Source tells what produced an output change.
type Source string

const (
	// SourceHeartbeat marks changes made by a scheduled evaluation.
	SourceHeartbeat Source = "heartbeat"
	// SourceCommand marks changes made by a manual arm or disarm.
	SourceCommand Source = "command"
	// SourceConfiguration marks changes forced by a configuration error.
	SourceConfiguration Source = "configuration"
	// SourceStartup marks the outputs written when the controller starts.
	SourceStartup Source = "startup"
)

// Event is an output change enriched for publishing and history.
type Event struct {
	ID     string    `json:"id"`
	Zone   string    `json:"zone"`
	Output Output    `json:"output"`
	On     bool      `json:"on"`
	At     time.Time `json:"at"`
	Source Source    `json:"source"`
	Phase  string    `json:"phase"`
	Actor  *Actor    `json:"actor,omitempty"`
}

// Value returns the output value as 0 or 1.
func (e *Event) Value() int {
	if e.On {
		return 1
	}

	return 0
}

// SwitchState renders the value the way home automation hubs name it.
func (e *Event) SwitchState() string {
	if e.On {
		return "ON"
	}

	return "OFF"
}
