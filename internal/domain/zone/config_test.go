package zone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParseSensorIDs covers valid lists, junk entries and empty results.
func TestParseSensorIDs(t *testing.T) {
	t.Parallel()

	ids, err := ParseSensorIDs("12, 15,18,12")
	require.NoError(t, err)
	require.Equal(t, []SensorID{12, 15, 18}, ids)

	ids, err = ParseSensorIDs("12,door,18")
	require.ErrorIs(t, err, ErrConfiguration)
	require.Equal(t, []SensorID{12, 18}, ids)

	ids, err = ParseSensorIDs("")
	require.ErrorIs(t, err, ErrConfiguration)
	require.Empty(t, ids)

	ids, err = ParseSensorIDs("a,b")
	require.ErrorIs(t, err, ErrConfiguration)
	require.Empty(t, ids)
}

// TestParseDelays covers the happy path and per-field fallbacks.
func TestParseDelays(t *testing.T) {
	t.Parallel()

	delays, err := ParseDelays("15,30,120")
	require.NoError(t, err)
	require.Equal(t, Delays{
		Detection: 15 * time.Second,
		AlarmOn:   30 * time.Second,
		AlarmOff:  2 * time.Minute,
	}, delays)

	delays, err = ParseDelays("5,soon,-1")
	require.ErrorIs(t, err, ErrConfiguration)
	require.Equal(t, Delays{
		Detection: 5 * time.Second,
		AlarmOn:   DefaultAlarmOnDelay,
		AlarmOff:  DefaultAlarmOffDelay,
	}, delays)

	delays, err = ParseDelays("5,10")
	require.ErrorIs(t, err, ErrConfiguration)
	require.Equal(t, DefaultDelays(), delays)
}

// TestConfigOutputs checks the output set for both variants.
func TestConfigOutputs(t *testing.T) {
	t.Parallel()

	cfg := Config{IntrusionStage: true, SensorIDs: []SensorID{3}}
	require.Equal(t, AllOutputs, cfg.Outputs())
	require.True(t, cfg.Monitors(3))
	require.False(t, cfg.Monitors(4))

	cfg.IntrusionStage = false
	require.NotContains(t, cfg.Outputs(), Intrusion)
}

// TestOutputText checks output names survive text encoding.
func TestOutputText(t *testing.T) {
	t.Parallel()

	for _, o := range AllOutputs {
		text, err := o.MarshalText()
		require.NoError(t, err)

		var decoded Output
		require.NoError(t, decoded.UnmarshalText(text))
		require.Equal(t, o, decoded)
	}

	var o Output
	require.Error(t, o.UnmarshalText([]byte("siren")))
}
