package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dharmasatrya/flightdeals/internal/airports"
	"github.com/dharmasatrya/flightdeals/internal/dates"
	"github.com/dharmasatrya/flightdeals/internal/dealscore"
	"github.com/dharmasatrya/flightdeals/internal/metrics"
	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/providers"
	"github.com/dharmasatrya/flightdeals/internal/scheduler"
	"github.com/dharmasatrya/flightdeals/pkg/logger"
)

const (
	RouteRoundTrip = "roundtrip"
	RouteMixMatch  = "mixmatch"
	RouteDateRange = "daterange"
	RouteAllDest   = "alldestinations"

	DateRangeLimit    = 50
	DateRangeInterval = 3
)

const configurationMessage = "RapidAPI key not configured. Please add RAPIDAPI_KEY to your environment variables and redeploy."

// Deps wires the handlers to their collaborators. Directory, Flights and
// Quotes are required; the rest fall back to defaults when nil.
type Deps struct {
	Directory       *airports.Directory
	Flights         providers.FlightSearcher
	Quotes          providers.QuoteSearcher
	Scheduler       *scheduler.Scheduler
	Scores          *dealscore.Service
	Metrics         *metrics.Metrics
	Logger          logger.Logger
	Clock           func() time.Time
	RoundTripWindow dates.Window
	MixMatchWindow  dates.Window
	DateRangePause  time.Duration
}

type Handler struct {
	dir             *airports.Directory
	flights         providers.FlightSearcher
	quotes          providers.QuoteSearcher
	scheduler       *scheduler.Scheduler
	scores          *dealscore.Service
	metrics         *metrics.Metrics
	log             logger.Logger
	clock           func() time.Time
	roundTripWindow dates.Window
	mixMatchWindow  dates.Window
	dateRangePause  time.Duration
}

func New(d Deps) *Handler {
	h := &Handler{
		dir:             d.Directory,
		flights:         d.Flights,
		quotes:          d.Quotes,
		scheduler:       d.Scheduler,
		scores:          d.Scores,
		metrics:         d.Metrics,
		log:             d.Logger,
		clock:           d.Clock,
		roundTripWindow: d.RoundTripWindow,
		mixMatchWindow:  d.MixMatchWindow,
		dateRangePause:  d.DateRangePause,
	}
	if h.metrics == nil {
		h.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}
	if h.log == nil {
		h.log = logger.NewNop()
	}
	if h.clock == nil {
		h.clock = time.Now
	}
	if h.scheduler == nil {
		h.scheduler = scheduler.New(scheduler.Config{}, h.log, h.metrics)
	}
	if h.scores == nil {
		h.scores = dealscore.NewService(nil, h.dir.Origin().Code, h.clock, h.log)
	}
	return h
}

// Register mounts every route on e.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/search-all-dates-destinations", h.SearchRoundTrip)
	api.POST("/search-mix-match", h.SearchMixMatch)
	api.POST("/search-flights", h.SearchFlights)
	api.POST("/search-all-destinations", h.SearchAllDestinations)
	api.POST("/search-date-range", h.SearchDateRange)
	api.POST("/calculate-deal-scores", h.CalculateDealScores)
	api.GET("/airports", h.ListAirports)

	e.GET("/health", HealthHandler)
	e.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))
}

// today is the reference date for generated searches, in the origin's timezone.
func (h *Handler) today() time.Time {
	return h.clock().In(h.dir.Location())
}

func (h *Handler) origin() string {
	return h.dir.Origin().Code
}

func invalidRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: "Failed to parse request body: " + err.Error(),
		Code:    http.StatusBadRequest,
	})
}

func validationError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}

func configurationError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "configuration_error",
		Message: configurationMessage,
		Code:    http.StatusInternalServerError,
	})
}

func searchError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}

// streamEnded reports whether err only means the client went away.
func streamEnded(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
