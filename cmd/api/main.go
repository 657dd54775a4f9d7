package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "todoapi/internal/adapter/http"
	"todoapi/internal/adapter/logger"
	"todoapi/internal/adapter/telemetry"
	"todoapi/internal/config"
	"todoapi/internal/core/port"
	coretelemetry "todoapi/internal/core/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()

	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		ServiceName: cfg.Telemetry.ServiceName,
	})

	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer appLogger.Sync()

	var (
		probe   port.Telemetry = coretelemetry.NewNoOpProbe()
		metrics *coretelemetry.AppMetrics
	)

	if cfg.Telemetry.Enabled {
		container, err := telemetry.NewContainer(ctx, telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Server.Environment,
			MetricsPort:    cfg.Telemetry.MetricsPort,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, appLogger.Logger)

		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := container.Shutdown(shutdownCtx); err != nil {
				appLogger.Error("Failed to flush telemetry", zap.Error(err))
			}
		}()

		container.Start(ctx)

		probe = container.NewTelemetryProbe()
		metrics = container.AppMetrics
	}

	if err := httpadapter.StartServer(ctx, cfg, probe, metrics, appLogger); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		return err
	}

	appLogger.Info("Server stopped")

	return nil
}
