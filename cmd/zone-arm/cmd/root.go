package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/service/client"
	"github.com/oshokin/security-zone/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// retryInterval is the delay between two attempts.
	retryInterval time.Duration

	// rootCmd represents the base command for arming the zone.
	rootCmd = &cobra.Command{
		Use:   "zone-arm [server-address]",
		Short: "Arm the security zone.",
		Long: `Turns Surveillance on. Sensor activity is evaluated from the next heartbeat.

Sends the request to the zone controller continuously until confirmation is received.
Server address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use server address argument if provided, otherwise rely on config.
			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			return client.Run(ctx, &client.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				Armed:         true,
				RetryInterval: retryInterval,
			})
		},
	}
)

// Execute runs the zone-arm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().DurationVar(&retryInterval, "retry", time.Second, "delay between two attempts")
}
