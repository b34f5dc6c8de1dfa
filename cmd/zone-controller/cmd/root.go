package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/service/controller"
	"github.com/oshokin/security-zone/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// outputsFile path where the zone outputs are persisted.
	outputsFile string
	// httpAddress overrides the REST listen address.
	httpAddress string
	// allowMultiple skips the single instance check.
	allowMultiple bool

	// rootCmd represents the base command for running the zone controller.
	rootCmd = &cobra.Command{
		Use:   "zone-controller [listen-address]",
		Short: "Run the security zone controller.",
		Long: `Starts the controller that evaluates one security zone on every heartbeat.

The controller polls the motion and contact sensors of the hub while the zone is
armed and drives the Surveillance, Detection, Intrusion and Alarm outputs with
the configured delays. Outputs are persisted to a JSON file and published to the
enabled integrations (history, MQTT, Kafka, InfluxDB, hub switches).

The gRPC command surface listens on the port of ServerAddress from the
configuration file, or on the listen address given as argument (e.g., :9090).
Only one controller may run on a host unless --allow-multiple is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return controller.Run(ctx, &controller.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				HTTPAddress:   httpAddress,
				OutputsFile:   outputsFile,
				AllowMultiple: allowMultiple,
			})
		},
	}
)

// Execute runs the zone-controller CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&outputsFile, "outputs-file", "o", "", "path to persist the zone outputs (overrides config)")
	rootCmd.Flags().StringVar(&httpAddress, "http", "", "REST listen address (overrides config)")
	rootCmd.Flags().BoolVar(&allowMultiple, "allow-multiple", false, "skip the single instance check")
}
