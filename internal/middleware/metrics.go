package middleware

import (
	"time"

	"order-service/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records the count and duration of HTTP requests
func MetricsMiddleware(m *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// the status is only known once the error handler has run
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.RecordHTTPRequest(c.Request().Method, path, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
