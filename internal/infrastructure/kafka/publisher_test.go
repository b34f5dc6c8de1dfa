package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/security-zone/internal/domain/zone"
)

var errBrokerDown = errors.New("broker down")

// fakeWriter captures written messages.
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}

	f.messages = append(f.messages, msgs...)

	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true

	return nil
}

// TestPublisher_Publish checks key, headers and payload.
func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	writer := new(fakeWriter)
	publisher := newPublisher(writer)

	event := &zone.Event{
		ID:     "e1",
		Zone:   "hall",
		Output: zone.Intrusion,
		On:     true,
		At:     time.Date(2026, time.March, 1, 22, 0, 0, 0, time.UTC),
		Source: zone.SourceHeartbeat,
	}

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, []byte("hall"), msg.Key)
	require.Equal(t, event.At, msg.Time)
	require.Equal(t, "intrusion", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, "intrusion", decoded["output"])
	require.Equal(t, "heartbeat", decoded["source"])

	require.NoError(t, publisher.Close())
	require.True(t, writer.closed)
}

// TestPublisher_WriteError checks broker errors are wrapped.
func TestPublisher_WriteError(t *testing.T) {
	t.Parallel()

	publisher := newPublisher(&fakeWriter{err: errBrokerDown})
	require.ErrorIs(t, publisher.Publish(context.Background(), &zone.Event{Zone: "hall"}), errBrokerDown)
	require.Equal(t, "kafka", publisher.Name())
}
