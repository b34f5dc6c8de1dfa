package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestParseVerbosity verifies the zone verbosity options.
func TestParseVerbosity(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"Normal":  zapcore.InfoLevel,
		"Verbose": zapcore.DebugLevel,
		"0":       zapcore.InfoLevel,
		"62":      zapcore.DebugLevel,
		"-1":      zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseVerbosity(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	got, ok := ParseVerbosity("chatty")
	require.False(t, ok)
	require.Equal(t, zapcore.InfoLevel, got)
}

// TestContextLogger verifies loggers travel through the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	custom := New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), custom)
	require.Same(t, custom, FromContext(ctx))

	named := WithName(ctx, "zone")
	require.NotSame(t, custom, FromContext(named))

	withKV := WithKV(named, "zone", "hall")
	require.NotNil(t, FromContext(withKV))
}
