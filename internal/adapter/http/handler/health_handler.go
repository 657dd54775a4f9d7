package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todoapi/internal/core/model/response"
)

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	name    string
	timeout time.Duration
	logger  *otelzap.Logger
}

func NewHealthHandler(store Pinger, name string, logger *otelzap.Logger) *HealthHandler {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return &HealthHandler{
		store:   store,
		name:    name,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Ctx(ctx).Error("Store health check failed", zap.String("store", h.name), zap.Error(err))

		c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable", Store: h.name})
		return
	}

	c.JSON(http.StatusOK, response.HealthResponse{Status: "ok", Store: h.name})
}
