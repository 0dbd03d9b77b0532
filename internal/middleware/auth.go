package middleware

import (
	"strings"

	"order-service/internal/apperr"
	"order-service/pkg/jwtutil"
	"order-service/pkg/logger"
	"order-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token of operator requests
func AuthMiddleware(m *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				m.RecordAuthAttempt("missing")
				return apperr.Unauthorized("missing authorization token")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				m.RecordAuthAttempt("malformed")
				return apperr.Unauthorized("expected Bearer token")
			}

			claims, err := jwtutil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				m.RecordAuthAttempt("invalid")
				return apperr.Unauthorized("invalid or expired token")
			}

			m.RecordAuthAttempt("success")
			c.Set("operator", claims.Subject)
			c.Set("operator_role", claims.Role)
			opLog := log.With(zap.String("operator", claims.Subject))
			c.Set("logger", opLog)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), opLog)))
			return next(c)
		}
	}
}
