package zone

import "errors"

var (
	// ErrConfiguration reports a malformed delay, an unusable sensor list or
	// a poll result that matches none of the configured sensors.
	ErrConfiguration = errors.New("zone configuration error")
	// ErrPoll reports a failed sensor hub poll. The tick keeps the previous state.
	ErrPoll = errors.New("sensor poll failed")
	// ErrMissingOutput reports that an output device the zone writes to does not exist.
	ErrMissingOutput = errors.New("zone output is missing")
)
