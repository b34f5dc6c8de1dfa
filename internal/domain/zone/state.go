package zone

import "time"

// Phase is the coarse state of an armed or disarmed zone.
type Phase int

const (
	// PhaseDisarmed means surveillance is off and every derived output is off.
	PhaseDisarmed Phase = iota
	// PhaseClear means armed with no recent sensor activity.
	PhaseClear
	// PhaseDetecting means Detection is on and no intrusion is confirmed yet.
	PhaseDetecting
	// PhaseIntrusionPending means Intrusion is on and the alarm on delay is running.
	PhaseIntrusionPending
	// PhaseAlarm means the alarm is latched.
	PhaseAlarm
)

// String returns a readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseDisarmed:
		return "disarmed"
	case PhaseClear:
		return "armed-clear"
	case PhaseDetecting:
		return "armed-detecting"
	case PhaseIntrusionPending:
		return "armed-intrusion-pending"
	case PhaseAlarm:
		return "armed-alarm"
	default:
		return "unknown"
	}
}

// State is the mutable part of a zone.
type State struct {
	// Armed mirrors the Surveillance output.
	Armed bool
	// Detection, Intrusion and Alarm are the derived outputs.
	Detection bool
	Intrusion bool
	Alarm     bool
	// LastSensorActiveAt is the last tick at which a monitored sensor reported active.
	LastSensorActiveAt time.Time
	// DetectionChangedAt is the time of the last Detection edge.
	DetectionChangedAt time.Time
	// ArmedChangedAt is the time of the last arm or disarm.
	ArmedChangedAt time.Time
	// LastActor issued the last arm or disarm command.
	LastActor *Actor
	// EscalationSpent is set when the alarm was cleared by the off delay.
	// Intrusion and Alarm stay off until the next rising Detection edge.
	EscalationSpent bool
}

// Clone returns a copy of the state that shares no pointers with the original.
func (s State) Clone() State {
	cloned := s
	cloned.LastActor = s.LastActor.Clone()

	return cloned
}

// Output returns the current value of an output.
func (s State) Output(o Output) bool {
	switch o {
	case Surveillance:
		return s.Armed
	case Detection:
		return s.Detection
	case Intrusion:
		return s.Intrusion
	case Alarm:
		return s.Alarm
	default:
		return false
	}
}

// Phase derives the coarse phase from the outputs.
func (s State) Phase() Phase {
	switch {
	case !s.Armed:
		return PhaseDisarmed
	case s.Alarm:
		return PhaseAlarm
	case s.Intrusion:
		return PhaseIntrusionPending
	case s.Detection:
		return PhaseDetecting
	default:
		return PhaseClear
	}
}

// Change is a single output transition produced by the machine.
type Change struct {
	Output Output
	On     bool
}
