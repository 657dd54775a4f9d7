package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/config"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
)

func NewRouter(cfg *config.Config, container *Container, metrics *telemetry.AppMetrics, logger *otelzap.Logger) *gin.Engine {
	return routes.SetupRouter(routes.HandlersConfig{
		TodoHandler:   container.TodoHandler,
		HealthHandler: container.HealthHandler,
	}, routes.RouterConfig{
		ServiceName:  cfg.Telemetry.ServiceName,
		GinMode:      cfg.Server.GinMode,
		EnforceHTTPS: cfg.Security.EnforceHTTPS,
		RateLimiter:  container.RateLimiter,
		Metrics:      metrics,
		Logger:       logger,
	})
}

// StartServer serves the API until ctx is canceled, then drains in-flight
// requests for at most the configured shutdown timeout and closes the store.
func StartServer(ctx context.Context, cfg *config.Config, probe port.Telemetry, metrics *telemetry.AppMetrics, logger *otelzap.Logger) error {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	container, err := NewContainer(ctx, cfg, probe, metrics, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewRouter(cfg, container, metrics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Environment),
		zap.String("store", container.Store.Driver()),
		zap.String("identity_provider", cfg.Auth.Provider),
		zap.String("ownership_policy", string(container.TodoService.Policy())),
		zap.Bool("rate_limit_enabled", container.RateLimiter != nil),
		zap.Bool("https_enforced", cfg.Security.EnforceHTTPS))

	serveErr := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		logger.Error("Server failed to start", zap.Error(err))
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return errors.Join(
		err,
		srv.Shutdown(shutdownCtx),
		container.Close(shutdownCtx),
	)
}
