package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/telemetry"
)

type HandlersConfig struct {
	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
}

type RouterConfig struct {
	ServiceName  string
	GinMode      string
	EnforceHTTPS bool
	// RateLimiter is nil when rate limiting is disabled.
	RateLimiter *middleware.RateLimiter
	Metrics     *telemetry.AppMetrics
	Logger      *otelzap.Logger
}

func SetupRouter(handlers HandlersConfig, config RouterConfig) *gin.Engine {
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}

	if config.Logger == nil {
		config.Logger = otelzap.New(zap.NewNop())
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.NewHTTPSEnforcer(config.EnforceHTTPS, config.Logger.Logger).HTTPSMiddleware())
	router.Use(otelgin.Middleware(config.ServiceName))
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.LoggingMiddleware(config.Logger))
	router.Use(middleware.CORSMiddleware())

	if config.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(config.Metrics))
	}

	if config.RateLimiter != nil {
		router.Use(config.RateLimiter.RateLimitMiddleware())
	}

	if handlers.HealthHandler != nil {
		router.GET("/healthz", handlers.HealthHandler.Health)
	}

	if handlers.TodoHandler != nil {
		setupTodoRoutes(router, handlers.TodoHandler)
	}

	return router
}

// Every todo route authenticates inside its handler.
func setupTodoRoutes(router *gin.Engine, todoHandler *handler.TodoHandler) {
	todos := router.Group("/todos")
	{
		todos.POST("", todoHandler.CreateTodo)
		todos.GET("", todoHandler.GetAllTodos)
		todos.PUT("/:id", todoHandler.UpdateTodo)
		todos.DELETE("/:id", todoHandler.DeleteTodo)
	}
}
