package influxdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
)

const (
	// measurement is the name of the written points.
	measurement = "zone_output"

	// defaultPingTimeout bounds the connectivity check.
	defaultPingTimeout = 5 * time.Second

	// batchSize and flushIntervalMillis tune the non-blocking writer.
	batchSize           = 50
	flushIntervalMillis = 1000
)

// ErrConnectionFailed is returned when the server is unreachable or unhealthy.
var ErrConnectionFailed = errors.New("influxdb connection failed")

// Publisher writes zone events as points.
type Publisher struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
}

// Connect creates the client, verifies connectivity and starts the error callback.
func Connect(ctx context.Context, cfg config.InfluxDBConfig, onError func(error)) (*Publisher, error) {
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(batchSize).
			SetFlushInterval(flushIntervalMillis),
	)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}

	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	go func() {
		for err := range writeAPI.Errors() {
			if onError != nil {
				onError(err)
			}
		}
	}()

	return &Publisher{
		client:   client,
		writeAPI: writeAPI,
	}, nil
}

// Name identifies the publisher in logs.
func (p *Publisher) Name() string {
	return "influxdb"
}

// Publish queues the event point. The write is batched and asynchronous.
func (p *Publisher) Publish(_ context.Context, event *zone.Event) error {
	p.writeAPI.WritePoint(newPoint(event))

	return nil
}

// Close flushes pending points and closes the client.
func (p *Publisher) Close() error {
	p.writeAPI.Flush()
	p.client.Close()

	return nil
}

// newPoint converts an event to a point.
func newPoint(event *zone.Event) *write.Point {
	return write.NewPoint(
		measurement,
		map[string]string{
			"zone":   event.Zone,
			"output": event.Output.String(),
			"source": string(event.Source),
		},
		map[string]any{
			"value": event.Value(),
			"phase": event.Phase,
		},
		event.At,
	)
}
