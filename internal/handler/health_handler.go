package handler

import (
	"context"
	"net/http"
	"time"

	"order-service/internal/repository"
	"order-service/pkg/config"
	"order-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthHandler reports liveness and store connectivity
type HealthHandler struct {
	store repository.Store
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(store repository.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.FromEcho(c).Error("Health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":  "unhealthy",
			"service": config.ServiceName,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": config.ServiceName,
	})
}
