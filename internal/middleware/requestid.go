package middleware

import (
	"order-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request id in and out
const HeaderRequestID = echo.HeaderXRequestID

// RequestIDMiddleware tags each request with an id, reusing the caller's
// X-Request-ID when present, and attaches a request-scoped logger to both the
// echo context and the request context.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request().Header.Set(HeaderRequestID, requestID)
		}
		c.Response().Header().Set(HeaderRequestID, requestID)
		c.Set("request_id", requestID)

		log := logger.GetLogger().With(zap.String("request_id", requestID))
		c.Set("logger", log)

		req := c.Request()
		c.SetRequest(req.WithContext(logger.WithContext(req.Context(), log)))

		return next(c)
	}
}
