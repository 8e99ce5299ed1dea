package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/flightdeals/internal/metrics"
	"github.com/dharmasatrya/flightdeals/pkg/logger"
)

// RequestLogger logs one line per request once the handler returns.
func RequestLogger(log logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogRequestID: true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				log.Error("request failed", append(fields, "error", v.Error)...)
				return nil
			}
			log.Info("request completed", fields...)
			return nil
		},
	})
}

// RequestMetrics records count and latency per route template, not raw path.
func RequestMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			switch {
			case errors.As(err, &he):
				status = he.Code
			case err != nil && !c.Response().Committed:
				status = http.StatusInternalServerError
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.ObserveHTTPRequest(c.Request().Method, path, strconv.Itoa(status), time.Since(start))
			return err
		}
	}
}
