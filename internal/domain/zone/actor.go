package zone

// Actor identifies who issued a manual command.
type Actor struct {
	// Hostname is the machine name where the command was issued.
	Hostname string `json:"hostname"`
	// Username is the system user who issued the command.
	Username string `json:"username"`
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}
