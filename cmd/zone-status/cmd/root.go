package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/service/client"
	"github.com/oshokin/security-zone/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// asJSON prints the raw snapshot.
	asJSON bool

	// rootCmd represents the base command for reading the zone state.
	rootCmd = &cobra.Command{
		Use:   "zone-status [server-address]",
		Short: "Print the security zone state.",
		Long: `Reads the current zone snapshot from the zone controller and prints it once.

The snapshot shows the phase, every output value and the last arm or disarm actor.
Server address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			return client.Status(ctx, &client.StatusOptions{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				JSON:          asJSON,
			})
		},
	}
)

// Execute runs the zone-status CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
}
