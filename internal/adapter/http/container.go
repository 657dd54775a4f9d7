package http

import (
	"context"
	"errors"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todoapi/internal/adapter/database"
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/adapter/identity"
	"todoapi/internal/adapter/redis"
	"todoapi/internal/config"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/internal/core/telemetry"
)

type Container struct {
	Store    *database.Store
	Redis    *goRedis.Client
	Verifier port.IdentityVerifier

	AuthService *service.AuthService
	TodoService *service.TodoService

	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
	RateLimiter   *middleware.RateLimiter
}

// NewContainer opens the configured store and identity provider and wires
// the services and handlers on top of them. metrics may be nil.
func NewContainer(ctx context.Context, cfg *config.Config, probe port.Telemetry, metrics *telemetry.AppMetrics, logger *otelzap.Logger) (*Container, error) {
	store, err := database.Open(ctx, cfg.Store, probe)
	if err != nil {
		return nil, err
	}

	verifier, err := identity.New(ctx, cfg.Auth)
	if err != nil {
		store.Close(context.Background())
		return nil, err
	}

	container := &Container{
		Store:    store,
		Verifier: verifier,
	}

	container.AuthService = service.NewAuthService(verifier, probe)
	container.TodoService = service.NewTodoService(store.Todos, probe, cfg.Ownership)

	container.TodoHandler = handler.NewTodoHandler(container.TodoService, container.AuthService, probe, logger)
	container.HealthHandler = handler.NewHealthHandler(store, store.Driver(), logger)

	if cfg.RateLimit.Enabled {
		var limiterStore middleware.RateLimitStore

		if cfg.RateLimit.RedisURL != "" {
			client, err := redis.NewClient(ctx, cfg.RateLimit.RedisURL)
			if err != nil {
				store.Close(context.Background())
				return nil, err
			}

			container.Redis = client
			limiterStore = middleware.NewRedisRateLimitStore(client)
		}

		container.RateLimiter = middleware.NewRateLimiter(limiterStore, loggerOf(logger), metrics)
	}

	return container, nil
}

func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}

	errs = append(errs, c.Store.Close(ctx))

	return errors.Join(errs...)
}

func loggerOf(logger *otelzap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}

	return logger.Logger
}
