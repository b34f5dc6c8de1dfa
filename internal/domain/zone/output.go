package zone

import (
	"fmt"
	"strings"
)

// Output is one of the boolean devices exposed by a zone.
type Output int

const (
	// Surveillance mirrors the arming switch. It is the only externally writable output.
	Surveillance Output = iota + 1
	// Detection is the debounced "a sensor is or was recently active" signal.
	Detection
	// Intrusion is the confirmed detection. Absent in the three-output variant.
	Intrusion
	// Alarm is the final escalated output.
	Alarm
)

// AllOutputs lists every output of the four-output variant in device order.
var AllOutputs = []Output{Surveillance, Detection, Intrusion, Alarm} //nolint:gochecknoglobals // Read-only lookup table.

// String returns the lower-case output name used in files, topics and payloads.
func (o Output) String() string {
	switch o {
	case Surveillance:
		return "surveillance"
	case Detection:
		return "detection"
	case Intrusion:
		return "intrusion"
	case Alarm:
		return "alarm"
	default:
		return fmt.Sprintf("output(%d)", int(o))
	}
}

// ParseOutput converts an output name back to an Output.
func ParseOutput(s string) (Output, bool) {
	for _, o := range AllOutputs {
		if strings.EqualFold(strings.TrimSpace(s), o.String()) {
			return o, true
		}
	}

	return 0, false
}

// MarshalText encodes the output by name.
func (o Output) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an output name.
func (o *Output) UnmarshalText(text []byte) error {
	parsed, ok := ParseOutput(string(text))
	if !ok {
		return fmt.Errorf("unknown zone output %q", string(text))
	}

	*o = parsed

	return nil
}
