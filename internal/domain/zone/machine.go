package zone

import (
	"fmt"
	"time"
)

// Machine evaluates one zone. It is not safe for concurrent use: the caller
// serialises ticks and commands.
type Machine struct {
	cfg   Config
	state State
}

// NewMachine creates a machine with every derived output off.
// The arming state is usually restored from the output registry.
func NewMachine(cfg Config, armed bool) *Machine {
	return &Machine{
		cfg: cfg,
		state: State{
			Armed: armed,
		},
	}
}

// Config returns the zone configuration.
func (m *Machine) Config() Config {
	return m.cfg
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state.Clone()
}

// Armed reports whether surveillance is on.
func (m *Machine) Armed() bool {
	return m.state.Armed
}

// SetArmed applies the manual surveillance command. Disarming clears
// Detection, Intrusion and Alarm at once, bypassing every delay.
func (m *Machine) SetArmed(now time.Time, armed bool, actor *Actor) []Change {
	var changes []Change

	if m.state.Armed != armed {
		m.state.Armed = armed
		m.state.ArmedChangedAt = now
		changes = append(changes, Change{Output: Surveillance, On: armed})
	}

	m.state.LastActor = actor.Clone()

	if !armed {
		changes = append(changes, m.clearDerived()...)
	}

	return changes
}

// ForceClear turns every output off, Surveillance included. It is the
// fallback for a zone whose sensors cannot be resolved.
func (m *Machine) ForceClear(now time.Time) []Change {
	changes := m.clearDerived()

	if m.state.Armed {
		m.state.Armed = false
		m.state.ArmedChangedAt = now
		changes = append([]Change{{Output: Surveillance, On: false}}, changes...)
	}

	return changes
}

// Tick runs one heartbeat evaluation against the sensor readings of this poll.
// Readings for sensors outside the zone are ignored; sensors missing from the
// map are unknown. When no monitored sensor is present at all the zone is
// force-cleared and an ErrConfiguration error is returned with the changes.
func (m *Machine) Tick(now time.Time, readings map[SensorID]bool) ([]Change, error) {
	// Arming gate.
	if !m.state.Armed {
		return m.clearDerived(), nil
	}

	matched, active := 0, false

	for _, id := range m.cfg.SensorIDs {
		value, ok := readings[id]
		if !ok {
			continue
		}

		matched++
		active = active || value
	}

	if matched == 0 {
		return m.ForceClear(now), fmt.Errorf(
			"%w: none of the sensors %v is a known switch", ErrConfiguration, m.cfg.SensorIDs,
		)
	}

	// Recency window.
	if active && now.After(m.state.LastSensorActiveAt) {
		m.state.LastSensorActiveAt = now
	}

	withinWindow := !m.state.LastSensorActiveAt.IsZero() &&
		!m.state.LastSensorActiveAt.Add(m.cfg.Delays.Detection).Before(now)

	var changes []Change

	// Detection latch. A rising edge starts a new escalation cycle.
	if withinWindow != m.state.Detection {
		m.state.Detection = withinWindow
		m.state.DetectionChangedAt = now
		changes = append(changes, Change{Output: Detection, On: withinWindow})

		if withinWindow {
			m.state.EscalationSpent = false
		}
	}

	// Alarm off, measured from the last detection change. Checked before the
	// alarm on step so a zero off delay still keeps the alarm for one heartbeat.
	if m.state.Alarm && m.elapsed(now, m.cfg.Delays.AlarmOff) {
		m.state.Alarm = false
		m.state.EscalationSpent = true
		changes = append(changes, Change{Output: Alarm, On: false})

		if m.state.Intrusion {
			m.state.Intrusion = false
			changes = append(changes, Change{Output: Intrusion, On: false})
		}
	}

	if m.state.EscalationSpent {
		return changes, nil
	}

	// Intrusion confirmation.
	escalated := m.state.Detection

	if m.cfg.IntrusionStage {
		if m.state.Detection && !m.state.Intrusion && m.elapsed(now, m.cfg.IntrusionDelay) {
			m.state.Intrusion = true
			changes = append(changes, Change{Output: Intrusion, On: true})
		}

		escalated = m.state.Intrusion
	}

	// Alarm on. One shot per detection episode.
	if escalated && !m.state.Alarm && m.elapsed(now, m.cfg.Delays.AlarmOn) {
		m.state.Alarm = true
		changes = append(changes, Change{Output: Alarm, On: true})
	}

	return changes, nil
}

// elapsed reports whether delay has passed since the last detection change.
// A zero delay is always elapsed.
func (m *Machine) elapsed(now time.Time, delay time.Duration) bool {
	if delay <= 0 {
		return true
	}

	return !m.state.DetectionChangedAt.Add(delay).After(now)
}

// clearDerived turns Detection, Intrusion and Alarm off without touching timers.
func (m *Machine) clearDerived() []Change {
	var changes []Change

	m.state.EscalationSpent = false

	if m.state.Detection {
		m.state.Detection = false
		changes = append(changes, Change{Output: Detection, On: false})
	}

	if m.state.Intrusion {
		m.state.Intrusion = false
		changes = append(changes, Change{Output: Intrusion, On: false})
	}

	if m.state.Alarm {
		m.state.Alarm = false
		changes = append(changes, Change{Output: Alarm, On: false})
	}

	return changes
}
