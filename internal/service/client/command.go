package client

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/logger"
	"github.com/oshokin/security-zone/internal/service/common"
)

// Options configures the surveillance commands.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Armed is the target surveillance state.
	Armed bool

	// RetryInterval overrides the delay between two attempts.
	RetryInterval time.Duration
}

// defaultRetryInterval defines the delay between two attempts.
const defaultRetryInterval = 1 * time.Second

// Run pushes the surveillance state with retries until the controller
// confirms it or ctx is canceled.
//
//nolint:cyclop,funlen // The retry loop reads best in one place.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, commandName(opts.Armed))

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger.Configure(cfg.LogLevel)

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Pushing surveillance state",
		"server_address", serverAddress,
		"armed", opts.Armed,
		"actor", actor.String(),
	)

	// attempt tries once, returns (completed, error).
	attempt := func() (bool, error) {
		snapshot, err := client.SetSurveillance(ctx, actor, opts.Armed)
		if err != nil {
			// Transient failures are retried.
			logger.ErrorKV(ctx, "SetSurveillance failed", "error", err)
			return false, nil
		}

		if snapshot.State.Armed != opts.Armed {
			return false, nil
		}

		logger.Infof(ctx, "Zone updated: %s", FormatSnapshot(snapshot))

		return true, nil
	}

	if done, err := attempt(); err != nil {
		return err
	} else if done {
		return nil
	}

	interval := opts.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := attempt()
			if err != nil {
				return err
			}

			if done {
				return nil
			}
		}
	}
}

func commandName(armed bool) string {
	if armed {
		return "zone-arm"
	}

	return "zone-disarm"
}

// FormatSnapshot renders a snapshot as a single readable line.
func FormatSnapshot(snapshot *zone.Snapshot) string {
	if snapshot == nil {
		return "<nil state>"
	}

	changedAt := "<unknown>"
	if !snapshot.State.ArmedChangedAt.IsZero() {
		changedAt = snapshot.State.ArmedChangedAt.Local().Format(time.RFC3339)
	}

	outputs := ""

	for _, o := range snapshot.Outputs {
		state := "off"
		if snapshot.State.Output(o) {
			state = "on"
		}

		outputs += fmt.Sprintf(" %s=%s", o, state)
	}

	return fmt.Sprintf("zone %q %s by %s (%s):%s",
		snapshot.Zone,
		snapshot.Phase(),
		snapshot.State.LastActor.String(),
		changedAt,
		outputs,
	)
}
