package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/flightdeals/internal/airports"
	"github.com/dharmasatrya/flightdeals/internal/dates"
	"github.com/dharmasatrya/flightdeals/internal/filter"
	"github.com/dharmasatrya/flightdeals/internal/metrics"
	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/providers"
	"github.com/dharmasatrya/flightdeals/internal/ranking"
)

const maxConcurrentQuotes = 10

// SearchFlights proxies one flights-sky round-trip search and returns the
// upstream payload as is.
func (h *Handler) SearchFlights(c echo.Context) error {
	var req models.FlightSearchRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return validationError(c, err)
	}
	if !h.quotes.Configured() {
		return configurationError(c)
	}

	raw, err := h.quotes.SearchQuotesRaw(c.Request().Context(), providers.QuoteQuery{
		Origin:        h.origin(),
		Destination:   req.DestinationCode,
		DepartureDate: req.OutboundDate,
		ReturnDate:    req.InboundDate,
	})
	if err != nil {
		h.log.Error("flight search failed", "destination", req.DestinationCode, "error", err)
		return searchError(c, "Failed to search flights")
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// SearchAllDestinations quotes every directory destination for one date pair.
func (h *Handler) SearchAllDestinations(c echo.Context) error {
	startTime := time.Now()

	var req models.AllDestinationsRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return validationError(c, err)
	}
	if !h.quotes.Configured() {
		return configurationError(c)
	}

	ctx := c.Request().Context()
	dests := h.dir.Destinations()

	var (
		mu    sync.Mutex
		found []models.SimplifiedDeal
	)
	var g errgroup.Group
	g.SetLimit(maxConcurrentQuotes)
	for _, dest := range dests {
		dest := dest
		g.Go(func() error {
			deal, ok := h.quoteDestination(ctx, dest, req.StartDate, req.EndDate)
			if !ok {
				return nil
			}
			mu.Lock()
			found = append(found, deal)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	deals := ranking.SimplifiedDeals(filter.Deals(found, filter.DealCriteria{
		MaxPrice:   req.MaxPrice,
		DirectOnly: req.DirectOnly,
	}))
	h.metrics.ObserveSearch(RouteAllDest, time.Since(startTime), len(deals))

	return c.JSON(http.StatusOK, models.AllDestinationsResponse{
		Deals: deals,
		Total: len(deals),
	})
}

func (h *Handler) quoteDestination(ctx context.Context, dest airports.Airport, outbound, inbound string) (models.SimplifiedDeal, bool) {
	resp, err := h.quotes.SearchQuotes(ctx, providers.QuoteQuery{
		Origin:        h.origin(),
		Destination:   dest.Code,
		DepartureDate: outbound,
		ReturnDate:    inbound,
	})
	if err != nil {
		h.metrics.IncTask(RouteAllDest, metrics.TaskFailed)
		if ctx.Err() == nil {
			h.log.Warn("destination quote failed", "destination", dest.Code, "error", err)
		}
		return models.SimplifiedDeal{}, false
	}

	deal, ok := resp.Simplified(dest.Code, dest.City, outbound, inbound)
	if !ok {
		h.metrics.IncTask(RouteAllDest, metrics.TaskEmpty)
		return models.SimplifiedDeal{}, false
	}
	if deal.Price == 0 {
		h.metrics.IncMissingPrice(RouteAllDest)
	}
	h.metrics.IncTask(RouteAllDest, metrics.TaskDeal)
	return deal, true
}

// SearchDateRange walks a sampled grid of departure dates and trip lengths
// for one destination. Queries run one at a time with a pause in between.
func (h *Handler) SearchDateRange(c echo.Context) error {
	startTime := time.Now()

	var req models.DateRangeRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	params, err := req.Params()
	if err != nil {
		return validationError(c, err)
	}
	if !h.quotes.Configured() {
		return configurationError(c)
	}

	ctx := c.Request().Context()
	city := h.dir.CityName(params.DestinationCode)
	pairs := dates.Sampled(h.today(), params.DaysAhead, DateRangeInterval, params.TripLengthMin, params.TripLengthMax)

	var found []models.DateRangeDeal
	for i, pair := range pairs {
		if ctx.Err() != nil {
			break
		}

		resp, err := h.quotes.SearchQuotes(ctx, providers.QuoteQuery{
			Origin:        h.origin(),
			Destination:   params.DestinationCode,
			DepartureDate: pair.DepartureDate,
			ReturnDate:    pair.ReturnDate,
		})
		if err != nil {
			h.metrics.IncTask(RouteDateRange, metrics.TaskFailed)
			h.log.Warn("date range query failed",
				"destination", params.DestinationCode,
				"departureDate", pair.DepartureDate,
				"returnDate", pair.ReturnDate,
				"error", err,
			)
		} else {
			deals := resp.DateRangeDeals(params.DestinationCode, city, pair.DepartureDate, pair.ReturnDate, params.NonstopOnly)
			for _, d := range deals {
				if d.Price == 0 {
					h.metrics.IncMissingPrice(RouteDateRange)
				}
			}
			found = append(found, deals...)
		}

		if i < len(pairs)-1 && !h.pause(ctx) {
			break
		}
	}

	deals, _ := ranking.DateRangeDeals(found, DateRangeLimit)
	h.metrics.ObserveSearch(RouteDateRange, time.Since(startTime), len(deals))

	return c.JSON(http.StatusOK, models.DateRangeResponse{
		Deals:         deals,
		TotalSearched: len(found),
		SearchParams:  params,
	})
}

// pause waits out the date-range delay, returning false if ctx ends first.
func (h *Handler) pause(ctx context.Context) bool {
	if h.dateRangePause <= 0 {
		return true
	}
	timer := time.NewTimer(h.dateRangePause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
