//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	api "github.com/oshokin/security-zone/internal/api/grpc/zone"
	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
)

// Client wraps the gRPC ZoneService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the zone controller.
	conn *grpc.ClientConn
	// api is the ZoneService client stub.
	api api.ZoneServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial creates a gRPC connection to the zone controller.
// The transport is insecure: run it on a trusted network or behind a TLS proxy.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial zone controller: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewZoneServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetZoneState retrieves the current zone snapshot.
func (c *Client) GetZoneState(ctx context.Context) (*zone.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetZoneState(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get zone state: %w", err)
	}

	snapshot, err := api.SnapshotFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("decode zone state: %w", err)
	}

	return &snapshot, nil
}

// SetSurveillance arms or disarms the remote zone.
func (c *Client) SetSurveillance(ctx context.Context, actor *zone.Actor, armed bool) (*zone.Snapshot, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.SetSurveillance(callCtx, api.NewSetSurveillanceRequest(armed, actor))
	if err != nil {
		return nil, fmt.Errorf("set surveillance: %w", err)
	}

	snapshot, err := api.SnapshotFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("decode zone state: %w", err)
	}

	return &snapshot, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
