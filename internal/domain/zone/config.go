package zone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SensorID is the hub identifier (idx) of a binary sensor.
type SensorID int

// Default delays applied when the configured value is unusable.
const (
	DefaultDetectionDelay = 0 * time.Second
	DefaultAlarmOnDelay   = 0 * time.Second
	DefaultAlarmOffDelay  = 60 * time.Second

	// delayFieldCount is the number of values expected in the delay CSV.
	delayFieldCount = 3
)

// Delays holds the three timing parameters of a zone.
type Delays struct {
	// Detection is the trailing recency window. A sensor active at any point
	// within it holds Detection on.
	Detection time.Duration
	// AlarmOn is the time between the last detection change and the alarm firing.
	AlarmOn time.Duration
	// AlarmOff is the time the alarm stays latched after the last detection change.
	AlarmOff time.Duration
}

// DefaultDelays returns the per-field fallback values.
func DefaultDelays() Delays {
	return Delays{
		Detection: DefaultDetectionDelay,
		AlarmOn:   DefaultAlarmOnDelay,
		AlarmOff:  DefaultAlarmOffDelay,
	}
}

// Config is the immutable configuration of one zone.
type Config struct {
	// Name identifies the zone in logs, topics and events.
	Name string
	// SensorIDs are the monitored sensors.
	SensorIDs []SensorID
	// Delays are the recency window and the alarm on/off delays.
	Delays Delays
	// IntrusionStage enables the separate Intrusion output between Detection and Alarm.
	IntrusionStage bool
	// IntrusionDelay is the confirmation delay between Detection and Intrusion.
	IntrusionDelay time.Duration
}

// Outputs returns the outputs the zone writes to.
func (c Config) Outputs() []Output {
	if c.IntrusionStage {
		return AllOutputs
	}

	return []Output{Surveillance, Detection, Alarm}
}

// Monitors reports whether the sensor belongs to the zone.
func (c Config) Monitors(id SensorID) bool {
	for _, s := range c.SensorIDs {
		if s == id {
			return true
		}
	}

	return false
}

// ParseSensorIDs parses a comma separated list of integer sensor identifiers.
// Entries that are not integers are dropped and reported. Duplicates are removed.
// The returned error wraps ErrConfiguration; the parsed ids are returned even then.
func ParseSensorIDs(csv string) ([]SensorID, error) {
	var (
		ids    []SensorID
		issues []error
		seen   = make(map[SensorID]struct{})
	)

	for _, raw := range strings.Split(csv, ",") {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}

		id, err := strconv.Atoi(value)
		if err != nil {
			issues = append(issues, fmt.Errorf("%w: sensor id %q is not an integer", ErrConfiguration, value))
			continue
		}

		if _, ok := seen[SensorID(id)]; ok {
			continue
		}

		seen[SensorID(id)] = struct{}{}
		ids = append(ids, SensorID(id))
	}

	if len(ids) == 0 {
		issues = append(issues, fmt.Errorf("%w: sensor list %q has no valid id", ErrConfiguration, csv))
	}

	return ids, errors.Join(issues...)
}

// ParseDelays parses "detection,alarmOn,alarmOff" in whole seconds.
// A malformed or negative field falls back to its default; a wrong field count
// keeps every default. Each substitution is reported through the returned error,
// which wraps ErrConfiguration. The returned Delays are always usable.
func ParseDelays(csv string) (Delays, error) {
	delays := DefaultDelays()

	fields := strings.Split(csv, ",")
	if len(fields) != delayFieldCount {
		return delays, fmt.Errorf(
			"%w: expected %d delay values in %q, got %d; using defaults",
			ErrConfiguration, delayFieldCount, csv, len(fields),
		)
	}

	targets := []struct {
		name     string
		value    *time.Duration
		fallback time.Duration
	}{
		{"detection delay", &delays.Detection, DefaultDetectionDelay},
		{"alarm on delay", &delays.AlarmOn, DefaultAlarmOnDelay},
		{"alarm off delay", &delays.AlarmOff, DefaultAlarmOffDelay},
	}

	var issues []error

	for i, target := range targets {
		seconds, err := ParseSeconds(fields[i])
		if err != nil {
			issues = append(issues, fmt.Errorf(
				"%w: %s has an invalid value %q, default of %s is used instead",
				ErrConfiguration, target.name, strings.TrimSpace(fields[i]), target.fallback,
			))

			continue
		}

		*target.value = seconds
	}

	return delays, errors.Join(issues...)
}

// errNegativeDelay is returned by ParseSeconds for values below zero.
var errNegativeDelay = errors.New("delay must not be negative")

// ParseSeconds parses a non-negative integer number of seconds.
func ParseSeconds(s string) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse seconds: %w", err)
	}

	if n < 0 {
		return 0, errNegativeDelay
	}

	return time.Duration(n) * time.Second, nil
}
