// Command mapper is the edge device mapper's entry point: it loads
// configuration, brings up the device registry and its sink fan-out, opens
// the control-plane UDS server and client, starts the admin HTTP server,
// and registers every configured device and model before handing control
// to the reconciliation loop each device runtime already owns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/edge-mapper/internal/adminapi"
	"github.com/nerrad567/edge-mapper/internal/device"
	"github.com/nerrad567/edge-mapper/internal/driver"
	"github.com/nerrad567/edge-mapper/internal/infrastructure/config"
	"github.com/nerrad567/edge-mapper/internal/infrastructure/localstate"
	"github.com/nerrad567/edge-mapper/internal/infrastructure/logging"
	"github.com/nerrad567/edge-mapper/internal/metrics"
	"github.com/nerrad567/edge-mapper/internal/rpcapi"
	"github.com/nerrad567/edge-mapper/internal/rpcclient"
	"github.com/nerrad567/edge-mapper/internal/rpcserver"
	"github.com/nerrad567/edge-mapper/internal/rpcserver/authtoken"
	"github.com/nerrad567/edge-mapper/internal/sink"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const configPathEnv = "MAPPER_CONFIG"

func main() {
	fmt.Printf("edge-mapper %s (%s) built %s\n", version, commit, date)

	// SIGPIPE arrives when a client reading our gRPC/HTTP response goes
	// away mid-write; the default action is process death, which is never
	// the right response to a single bad peer (spec §6).
	signal.Ignore(syscall.SIGPIPE)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go forceExitOnSecondSignal()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "edge-mapper: %v\n", err)
		os.Exit(1)
	}
}

// forceExitOnSecondSignal terminates immediately with 128+signo if a second
// SIGINT/SIGTERM arrives while graceful shutdown is already in progress
// (spec §6). signal.NotifyContext only ever consumes the first signal, so
// a second raw channel is needed to observe the repeat.
func forceExitOnSecondSignal() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh // first delivery: let the graceful path handle it
	sig = <-sigCh  // second delivery: bail out immediately
	switch sig {
	case syscall.SIGINT:
		os.Exit(128 + int(syscall.SIGINT))
	case syscall.SIGTERM:
		os.Exit(128 + int(syscall.SIGTERM))
	default:
		os.Exit(128)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Logging, version)
	logger.Info("starting edge-mapper", "name", cfg.Common.Name, "version", version)

	driverFactory := driver.NewFactory()
	recorders := sink.NewRecorders()
	defer recorders.Close()
	publishers := sink.NewPublisherCache()

	registry := device.NewRegistry()

	localStateCache, err := localstate.Open()
	if err != nil {
		return fmt.Errorf("opening local state cache: %w", err)
	}
	defer localStateCache.Close()

	rpcClient, err := rpcclient.Dial(cfg.Common.EdgecoreSock)
	if err != nil {
		return fmt.Errorf("dialing control plane: %w", err)
	}
	rpcClient.SetLogger(logger)
	defer rpcClient.Close()

	metricsCollector := metrics.New()

	admin, err := adminapi.New(adminapi.Deps{
		Addr:       fmt.Sprintf("0.0.0.0:%d", cfg.Common.HTTPPort),
		APIVersion: cfg.Common.APIVersion,
		Logger:     logger,
		Auth:       authtoken.NewVerifier(os.Getenv("ADMIN_AUTH_SECRET"), cfg.Common.Name),
		LocalState: localStateCache,
		Metrics:    metricsCollector,
	})
	if err != nil {
		return fmt.Errorf("building admin server: %w", err)
	}

	reporter := device.NewFanOutReporter(rpcClient, admin.Hub(), localStateCache)

	mapperServer := rpcserver.New(registry, driverFactory, recorders, publishers, reporter)
	mapperServer.SetLogger(logger)
	mapperServer.SetMetrics(metricsCollector)
	admin.SetMapper(mapperServer)

	grpcServer, lis, err := rpcserver.Listen(cfg.GRPCServer.SocketPath, mapperServer)
	if err != nil {
		return fmt.Errorf("starting control-plane listener: %w", err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("control-plane server stopped", "error", err)
		}
	}()
	logger.Info("control-plane listening", "socket", cfg.GRPCServer.SocketPath)

	// RegisterDevice starts each restored runtime as it is replayed
	// (CreateDeviceModel only stores the model), so there is no separate
	// StartAll step here.
	if err := registerWithControlPlane(ctx, rpcClient, mapperServer, cfg, logger); err != nil {
		return fmt.Errorf("registering with control plane: %w", err)
	}

	if err := admin.Start(ctx); err != nil {
		return fmt.Errorf("starting admin server: %w", err)
	}

	logger.Info("edge-mapper ready")
	<-ctx.Done()

	logger.Info("shutdown signal received, stopping")
	registry.StopAll()
	if err := admin.Close(); err != nil {
		logger.Warn("admin server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	if err := os.Remove(cfg.GRPCServer.SocketPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("removing control-plane socket", "error", err)
	}

	logger.Info("edge-mapper stopped")
	return nil
}

// registerWithControlPlane announces this mapper and, when the control
// plane reflects back devices/models it already knows about, repopulates
// the registry from that response rather than waiting for a human to push
// every device again after a restart (spec §4.G).
func registerWithControlPlane(ctx context.Context, rpcClient *rpcclient.Client, mapperServer *rpcserver.Server, cfg *config.Config, logger *logging.Logger) error {
	resp, err := rpcClient.MapperRegister(ctx, rpcapi.MapperInfo{
		Name:       cfg.Common.Name,
		Version:    version,
		APIVersion: cfg.Common.APIVersion,
		Protocol:   cfg.Common.Protocol,
		Address:    cfg.Common.Address,
		State:      "ok",
	}, true)
	if err != nil {
		return err
	}

	for _, m := range resp.ModelList {
		if _, err := mapperServer.CreateDeviceModel(ctx, &rpcapi.CreateDeviceModelRequest{Model: m}); err != nil {
			logger.Warn("restoring model from control plane", "model", m.Name, "error", err)
		}
	}
	for _, d := range resp.DeviceList {
		if _, err := mapperServer.RegisterDevice(ctx, &rpcapi.RegisterDeviceRequest{Device: d}); err != nil {
			logger.Warn("restoring device from control plane", "device", d.Name, "error", err)
		}
	}
	logger.Info("restored state from control plane", "models", len(resp.ModelList), "devices", len(resp.DeviceList))
	return nil
}
