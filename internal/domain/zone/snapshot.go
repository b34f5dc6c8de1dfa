package zone

import "time"

// Snapshot is a read-only view of a zone for the command surfaces.
type Snapshot struct {
	// Zone is the zone name.
	Zone string
	// State is a copy of the machine state.
	State State
	// Outputs lists the outputs of the configured variant.
	Outputs []Output
	// UpdatedAt is the time of the last evaluation or command.
	UpdatedAt time.Time
}

// Phase returns the coarse phase of the snapshot.
func (s Snapshot) Phase() Phase {
	return s.State.Phase()
}

// Values returns the outputs of the variant with their current value.
func (s Snapshot) Values() map[Output]bool {
	values := make(map[Output]bool, len(s.Outputs))
	for _, o := range s.Outputs {
		values[o] = s.State.Output(o)
	}

	return values
}

// Clone returns a copy that shares no pointers or slices with the original.
func (s Snapshot) Clone() Snapshot {
	cloned := s
	cloned.State = s.State.Clone()
	cloned.Outputs = append([]Output(nil), s.Outputs...)

	return cloned
}
