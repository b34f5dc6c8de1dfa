package controller

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	api "github.com/oshokin/security-zone/internal/api/grpc/zone"
	"github.com/oshokin/security-zone/internal/api/rest"
	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/infrastructure/hub"
	"github.com/oshokin/security-zone/internal/infrastructure/influxdb"
	"github.com/oshokin/security-zone/internal/infrastructure/kafka"
	"github.com/oshokin/security-zone/internal/infrastructure/mqtt"
	"github.com/oshokin/security-zone/internal/logger"
	"github.com/oshokin/security-zone/internal/repository/history"
	"github.com/oshokin/security-zone/internal/repository/outputs"
)

// Options controls the zone-controller process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// HTTPAddress provides an optional listen address override for the REST surface.
	HTTPAddress string
	// OutputsFile specifies the path of the zone outputs JSON.
	OutputsFile string
	// AllowMultiple disables the single instance check.
	AllowMultiple bool
}

const (
	// readHeaderTimeout bounds the HTTP request headers.
	readHeaderTimeout = 5 * time.Second

	// shutdownTimeout bounds the HTTP graceful shutdown.
	shutdownTimeout = 5 * time.Second
)

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the zone loop and the command surfaces, and blocks until ctx is
// canceled or a server fails.
//
//nolint:funlen // Startup wiring reads best in one place.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "zone-controller")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if !logger.Configure(settings.LogLevel) {
		logger.WarnKV(ctx, "Unknown log level, info is used", "log_level", settings.LogLevel)
	}

	if !opts.AllowMultiple {
		if err = ensureSingleInstance(); err != nil {
			return err
		}
	}

	// Zone parameter problems are logged and the safe fallbacks are used.
	zoneCfg, err := settings.Zone.Resolve()
	if err != nil {
		logger.ErrorKV(ctx, "Zone configuration error", "error", err)
	}

	outputsFile := settings.OutputsFile
	if opts.OutputsFile != "" {
		outputsFile = opts.OutputsFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	hubClient := hub.New(settings.Hub)
	registry := outputs.NewFileRegistry(outputsFile, zoneCfg.Name)

	publishers, historyRepo := openPublishers(ctx, settings, hubClient)

	ctrl := New(zoneCfg, hubClient, registry,
		WithPublishers(publishers...),
		WithPollTimeout(settings.Hub.Timeout),
	)

	if err = ctrl.Start(ctx); err != nil {
		closeAll(ctx, publishers)
		return fmt.Errorf("start zone: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		closeAll(ctx, publishers)
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterZoneServiceServer(grpcServer, api.NewServer(ctrl))

	var reader rest.HistoryReader
	if historyRepo != nil {
		reader = historyRepo
	}

	httpServer := newHTTPServer(ctx, settings.HTTPAddress, opts.HTTPAddress, rest.NewHandler(ctx, ctrl, reader))

	logger.InfoKV(ctx, "Zone controller listening",
		"listen_address", listenAddress,
		"http_address", httpAddress(httpServer),
		"outputs_file", outputsFile,
		"heartbeat", settings.Heartbeat.String(),
		"publishers", len(publishers),
	)

	// The loop stops with ctx or when a server fails.
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()

	loopDone := make(chan struct{})

	go func() {
		ctrl.Run(loopCtx, settings.Heartbeat)
		close(loopDone)
	}()

	errCh := make(chan error, 2)

	go func() {
		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("serve gRPC: %w", serveErr)
		}
	}()

	if httpServer != nil {
		go func() {
			if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				errCh <- fmt.Errorf("serve HTTP: %w", serveErr)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err = <-errCh:
		logger.ErrorKV(ctx, "Server failed", "error", err)
	}

	logger.Info(ctx, "Shutting down zone controller")

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		_ = httpServer.Shutdown(shutdownCtx)

		shutdownCancel()
	}

	grpcServer.GracefulStop()

	stopLoop()
	<-loopDone
	logger.Info(ctx, "Zone controller stopped")

	return err
}

// openPublishers connects the enabled integrations. A failing integration is
// logged and skipped so it never blocks surveillance.
func openPublishers(ctx context.Context, settings *config.Config, hubClient *hub.Client) ([]Publisher, *history.Repository) {
	var (
		publishers  []Publisher
		historyRepo *history.Repository
	)

	if settings.History.Enabled {
		repo, err := history.Open(ctx, settings.History.Path)
		if err != nil {
			logger.ErrorKV(ctx, "History disabled", "error", err)
		} else {
			historyRepo = repo
			publishers = append(publishers, repo)
		}
	}

	if settings.MQTT.Enabled {
		publisher, err := mqtt.Connect(settings.MQTT, settings.Zone.Name)
		if err != nil {
			logger.ErrorKV(ctx, "MQTT disabled", "error", err)
		} else {
			publishers = append(publishers, publisher)
		}
	}

	if settings.Kafka.Enabled {
		publishers = append(publishers, kafka.New(settings.Kafka))
	}

	if settings.InfluxDB.Enabled {
		publisher, err := influxdb.Connect(ctx, settings.InfluxDB, func(writeErr error) {
			logger.WarnKV(ctx, "InfluxDB write failed", "error", writeErr)
		})
		if err != nil {
			logger.ErrorKV(ctx, "InfluxDB disabled", "error", err)
		} else {
			publishers = append(publishers, publisher)
		}
	}

	mirror, err := settings.Hub.MirrorOutputs()
	if err != nil {
		logger.ErrorKV(ctx, "Hub mirror configuration error", "error", err)
	}

	if len(mirror) > 0 {
		publishers = append(publishers, hub.NewMirror(hubClient, mirror))
	}

	return publishers, historyRepo
}

// newHTTPServer returns nil when no HTTP address is configured.
func newHTTPServer(ctx context.Context, configAddr, override string, handler http.Handler) *http.Server {
	address := configAddr
	if override != "" {
		address = override
	}

	if address == "" {
		return nil
	}

	return &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

func httpAddress(server *http.Server) string {
	if server == nil {
		return ""
	}

	return server.Addr
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Port-only address binds on all interfaces.
	return ":" + port, nil
}
