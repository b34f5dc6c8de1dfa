package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Verbosity values understood besides zap level names.
const (
	// VerbosityNormal logs transitions and errors.
	VerbosityNormal = "Normal"
	// VerbosityVerbose adds the per-tick steady state messages.
	VerbosityVerbose = "Verbose"
)

// ParseVerbosity maps the zone log verbosity option to a zap level.
// "Normal" is info, "Verbose" and any non-zero numeric debug mask are debug,
// "0" is info and zap level names are accepted as-is.
// The second result is false for an unknown value, which maps to info.
func ParseVerbosity(s string) (zapcore.Level, bool) {
	value := strings.TrimSpace(s)

	switch {
	case value == "", strings.EqualFold(value, VerbosityNormal):
		return zapcore.InfoLevel, true
	case strings.EqualFold(value, VerbosityVerbose):
		return zapcore.DebugLevel, true
	}

	if mask, err := strconv.Atoi(value); err == nil {
		if mask == 0 {
			return zapcore.InfoLevel, true
		}

		return zapcore.DebugLevel, true
	}

	return ParseLogLevel(value)
}
