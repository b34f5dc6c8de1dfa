package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/logger"
	"github.com/oshokin/security-zone/internal/repository/outputs"
)

const (
	// commandQueueSize is the number of pending surveillance commands.
	commandQueueSize = 16

	// defaultPollTimeout bounds one sensor poll when no option overrides it.
	defaultPollTimeout = 5 * time.Second
)

// ErrStopped is returned for commands sent to a controller whose loop has exited.
var ErrStopped = errors.New("zone controller is stopped")

// SensorHub reads the current value of the zone sensors.
type SensorHub interface {
	Poll(ctx context.Context, ids []zone.SensorID) (map[zone.SensorID]bool, error)
}

// command is a queued manual surveillance change.
type command struct {
	armed bool
	actor *zone.Actor
	reply chan zone.Snapshot
}

// Controller drives one zone.
type Controller struct {
	// cfg is the resolved zone configuration.
	cfg zone.Config
	// machine is owned by the loop goroutine once Run is called.
	machine *zone.Machine
	// hub is polled on every armed heartbeat.
	hub SensorHub
	// registry persists the outputs.
	registry outputs.Registry
	// publishers receive every output change.
	publishers []Publisher
	// pollTimeout bounds one sensor poll.
	pollTimeout time.Duration
	// now and newID are replaced in tests.
	now   func() time.Time
	newID func() string

	commands chan command
	done     chan struct{}

	// mu protects snapshot.
	mu       sync.RWMutex
	snapshot zone.Snapshot
}

// Option configures the controller.
type Option func(*Controller)

// WithPublishers adds output change publishers.
func WithPublishers(publishers ...Publisher) Option {
	return func(c *Controller) {
		for _, p := range publishers {
			if p != nil {
				c.publishers = append(c.publishers, p)
			}
		}
	}
}

// WithPollTimeout overrides the sensor poll timeout.
func WithPollTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.pollTimeout = timeout
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a controller. Call Start before Run.
func New(cfg zone.Config, hub SensorHub, registry outputs.Registry, opts ...Option) *Controller {
	c := &Controller{
		cfg:         cfg,
		machine:     zone.NewMachine(cfg, false),
		hub:         hub,
		registry:    registry,
		pollTimeout: defaultPollTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
		commands:    make(chan command, commandQueueSize),
		done:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.publishSnapshot(c.now())

	return c
}

// Start creates the missing outputs and restores Surveillance from the
// registry. Detection, Intrusion and Alarm always start off.
func (c *Controller) Start(ctx context.Context) error {
	outputsList := c.cfg.Outputs()

	if err := c.registry.Ensure(ctx, outputsList); err != nil {
		return fmt.Errorf("ensure zone outputs: %w", err)
	}

	values, err := c.registry.Load(ctx)
	if err != nil {
		return fmt.Errorf("load zone outputs: %w", err)
	}

	armed := values[zone.Surveillance]
	c.machine = zone.NewMachine(c.cfg, armed)

	initial := make([]zone.Change, 0, len(outputsList))
	for _, o := range outputsList {
		initial = append(initial, zone.Change{Output: o, On: o == zone.Surveillance && armed})
	}

	c.commit(ctx, c.now(), initial, zone.SourceStartup, nil)

	logger.InfoKV(ctx, "Zone restored",
		"zone", c.cfg.Name,
		"armed", armed,
		"sensors", c.cfg.SensorIDs,
		"intrusion_stage", c.cfg.IntrusionStage,
	)

	return nil
}

// Run evaluates the zone every heartbeat and applies surveillance commands
// until ctx is canceled. It closes the publishers on exit.
func (c *Controller) Run(ctx context.Context, heartbeat time.Duration) {
	defer close(c.done)
	defer closeAll(ctx, c.publishers)

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	c.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Zone controller stopped")
			return
		case cmd := <-c.commands:
			c.apply(ctx, cmd)
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// SetSurveillance queues a manual arm or disarm and waits until the loop
// applied it. The returned snapshot reflects the command.
func (c *Controller) SetSurveillance(ctx context.Context, armed bool, actor *zone.Actor) (zone.Snapshot, error) {
	cmd := command{
		armed: armed,
		actor: actor.Clone(),
		reply: make(chan zone.Snapshot, 1),
	}

	select {
	case c.commands <- cmd:
	case <-c.done:
		return zone.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return zone.Snapshot{}, ctx.Err()
	}

	select {
	case snapshot := <-cmd.reply:
		return snapshot, nil
	case <-c.done:
		return zone.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return zone.Snapshot{}, ctx.Err()
	}
}

// Snapshot returns the state published by the last evaluation or command.
func (c *Controller) Snapshot() zone.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot.Clone()
}

// tick runs one heartbeat evaluation.
func (c *Controller) tick(ctx context.Context) {
	missing, err := c.registry.Missing(ctx, c.cfg.Outputs())
	if err != nil {
		logger.ErrorKV(ctx, "Unable to check zone outputs", "error", err)
		return
	}

	if len(missing) > 0 {
		logger.ErrorKV(ctx, "Zone evaluation skipped",
			"error", fmt.Errorf("%w: %v", zone.ErrMissingOutput, missing),
		)

		return
	}

	c.drain(ctx)

	now := c.now()

	if !c.machine.Armed() {
		changes, _ := c.machine.Tick(now, nil)
		c.commit(ctx, now, changes, zone.SourceHeartbeat, nil)

		return
	}

	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	readings, err := c.hub.Poll(pollCtx, c.cfg.SensorIDs)

	cancel()

	if err != nil {
		logger.ErrorKV(ctx, "Sensor poll failed, zone state kept", "error", err)
		return
	}

	// Readings are timestamped after the poll returns.
	now = c.now()

	changes, err := c.machine.Tick(now, readings)
	source := zone.SourceHeartbeat

	if err != nil {
		logger.ErrorKV(ctx, "Zone cleared", "error", err)

		source = zone.SourceConfiguration
	}

	c.commit(ctx, now, changes, source, nil)
}

// drain applies every queued command without blocking.
func (c *Controller) drain(ctx context.Context) {
	for {
		select {
		case cmd := <-c.commands:
			c.apply(ctx, cmd)
		default:
			return
		}
	}
}

// apply executes one surveillance command and answers the caller.
func (c *Controller) apply(ctx context.Context, cmd command) {
	now := c.now()
	changes := c.machine.SetArmed(now, cmd.armed, cmd.actor)

	logger.InfoKV(ctx, "Zone surveillance command",
		"armed", cmd.armed,
		"actor", cmd.actor.String(),
		"changes", len(changes),
	)

	c.commit(ctx, now, changes, zone.SourceCommand, cmd.actor)

	cmd.reply <- c.Snapshot()
}

// commit persists the changes, publishes them and refreshes the snapshot.
func (c *Controller) commit(
	ctx context.Context,
	now time.Time,
	changes []zone.Change,
	source zone.Source,
	actor *zone.Actor,
) {
	c.publishSnapshot(now)

	if len(changes) == 0 {
		return
	}

	values := make(map[zone.Output]bool, len(changes))
	for _, change := range changes {
		values[change.Output] = change.On
	}

	if err := c.registry.Write(ctx, values); err != nil {
		logger.ErrorKV(ctx, "Unable to write zone outputs", "error", err)
	}

	state := c.machine.State()
	phase := state.Phase().String()

	for _, change := range changes {
		event := &zone.Event{
			ID:     c.newID(),
			Zone:   c.cfg.Name,
			Output: change.Output,
			On:     change.On,
			At:     now,
			Source: source,
			Phase:  phase,
			Actor:  actor.Clone(),
		}

		logger.InfoKV(ctx, "Zone output changed",
			"output", change.Output.String(),
			"on", change.On,
			"source", string(source),
			"phase", phase,
		)

		publishAll(ctx, c.publishers, event)
	}
}

// publishSnapshot stores the current machine state for readers.
func (c *Controller) publishSnapshot(now time.Time) {
	snapshot := zone.Snapshot{
		Zone:      c.cfg.Name,
		State:     c.machine.State(),
		Outputs:   c.cfg.Outputs(),
		UpdatedAt: now,
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()
}
