package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
)

const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time in milliseconds to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxReconnectInterval caps the reconnect backoff.
	maxReconnectInterval = time.Minute
)

var (
	// ErrConnectionFailed is returned when the broker cannot be reached.
	ErrConnectionFailed = errors.New("mqtt connection failed")
	// ErrPublishFailed is returned when a publish is not acknowledged.
	ErrPublishFailed = errors.New("mqtt publish failed")
	// ErrNotConnected is returned when publishing while disconnected.
	ErrNotConnected = errors.New("mqtt client not connected")
)

// Publisher publishes zone events to the broker.
type Publisher struct {
	client pahomqtt.Client
	topics Topics
	qos    byte
}

// Connect establishes a connection to the broker and announces the zone online.
func Connect(cfg config.MQTTConfig, zoneName string) (*Publisher, error) {
	topics := Topics{Prefix: cfg.TopicPrefix, Zone: zoneName}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	// The broker publishes offline for us if the controller dies.
	opts.SetWill(topics.Availability(), availabilityOffline, 1, true)

	// Announce online again after every reconnect.
	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		c.Publish(topics.Availability(), 1, true, availabilityOnline)
	})

	client := pahomqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}

	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return newPublisher(client, topics, cfg.QoS), nil
}

// newPublisher wraps an existing paho client.
func newPublisher(client pahomqtt.Client, topics Topics, qos byte) *Publisher {
	return &Publisher{
		client: client,
		topics: topics,
		qos:    qos,
	}
}

// Name identifies the publisher in logs.
func (p *Publisher) Name() string {
	return "mqtt"
}

// Publish sends the retained output state and the JSON event.
func (p *Publisher) Publish(_ context.Context, event *zone.Event) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	if err := p.publish(p.topics.State(event.Output), true, event.SwitchState()); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	return p.publish(p.topics.Events(), false, payload)
}

// Close announces the zone offline and disconnects.
func (p *Publisher) Close() error {
	if p.client.IsConnected() {
		_ = p.publish(p.topics.Availability(), true, availabilityOffline)
	}

	p.client.Disconnect(defaultDisconnectQuiesce)

	return nil
}

// publish sends one message and waits for the acknowledgment.
func (p *Publisher) publish(topic string, retained bool, payload any) error {
	token := p.client.Publish(topic, p.qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}

	return nil
}
