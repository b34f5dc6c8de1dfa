package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	grpczone "github.com/oshokin/security-zone/internal/api/grpc/zone"
	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/logger"
	"github.com/oshokin/security-zone/internal/service/common"
)

// StatusOptions configures the status command.
type StatusOptions struct {
	// ConfigPath to YAML settings file.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// JSON prints the raw snapshot payload instead of a readable line.
	JSON bool
	// Out receives the output, stdout when nil.
	Out io.Writer
}

// Status prints the current zone snapshot once.
func Status(ctx context.Context, opts *StatusOptions) error {
	ctx = logger.WithName(ctx, "zone-status")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger.Configure(cfg.LogLevel)

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	snapshot, err := client.GetZoneState(ctx)
	if err != nil {
		return err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if opts.JSON {
		payload, err := grpczone.SnapshotToStruct(snapshot).MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode zone state: %w", err)
		}

		var pretty any
		if err = json.Unmarshal(payload, &pretty); err != nil {
			return fmt.Errorf("encode zone state: %w", err)
		}

		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(pretty)
	}

	_, err = fmt.Fprintln(out, FormatSnapshot(snapshot))

	return err
}
