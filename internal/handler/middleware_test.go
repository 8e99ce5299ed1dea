package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/flightdeals/internal/handler"
	"github.com/dharmasatrya/flightdeals/internal/metrics"
	"github.com/dharmasatrya/flightdeals/pkg/logger"
)

func TestRequestMetrics_UsesRouteTemplate(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	e := echo.New()
	e.Use(handler.RequestLogger(logger.NewNop()))
	e.Use(handler.RequestMetrics(m))
	e.GET("/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })

	for _, path := range []string{"/items/1", "/items/2", "/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/fail", "418")))
}
