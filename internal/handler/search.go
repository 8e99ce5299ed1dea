package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightdeals/internal/airports"
	"github.com/dharmasatrya/flightdeals/internal/dates"
	"github.com/dharmasatrya/flightdeals/internal/mixmatch"
	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/normalizer"
	"github.com/dharmasatrya/flightdeals/internal/providers"
	"github.com/dharmasatrya/flightdeals/internal/ranking"
	"github.com/dharmasatrya/flightdeals/internal/scheduler"
	"github.com/dharmasatrya/flightdeals/internal/stream"
	"github.com/dharmasatrya/flightdeals/pkg/booking"
	"github.com/dharmasatrya/flightdeals/pkg/currency"
)

// SearchRoundTrip streams the cheapest round trip per destination and date
// pair as ndjson progress events followed by one complete event.
func (h *Handler) SearchRoundTrip(c echo.Context) error {
	startTime := time.Now()

	params, dests, ok, err := h.prepareSearch(c, true)
	if !ok {
		return err
	}

	pairs := h.datePairs(params, h.roundTripWindow)
	tasks := scheduler.BuildTasks(dests, pairs, params.DepartureWindow, params.ReturnWindow)

	w := openStream(c)
	found, err := scheduler.Run(c.Request().Context(), h.scheduler, RouteRoundTrip, tasks, h.roundTripWorker(params.NonstopOnly), progressReporter(w))
	if err != nil {
		h.searchStopped(RouteRoundTrip, err)
		return nil
	}

	deals, total := ranking.Deals(found, params.MaxResults)
	h.metrics.ObserveSearch(RouteRoundTrip, time.Since(startTime), len(deals))

	if err := w.Send(models.RoundTripComplete{
		Type:                 models.EventComplete,
		Deals:                deals,
		TotalFound:           total,
		DestinationsSearched: len(dests),
		DatesSearched:        len(pairs),
		SearchParams:         models.EchoParams(params),
	}); err != nil {
		h.searchStopped(RouteRoundTrip, err)
	}
	return nil
}

// SearchMixMatch streams combinations of independently priced one-way legs.
func (h *Handler) SearchMixMatch(c echo.Context) error {
	startTime := time.Now()

	params, dests, ok, err := h.prepareSearch(c, false)
	if !ok {
		return err
	}

	pairs := h.datePairs(params, h.mixMatchWindow)
	tasks := scheduler.BuildTasks(dests, pairs, params.DepartureWindow, params.ReturnWindow)
	rec := mixmatch.NewRecombiner(h.flights, h.origin(), params.NonstopOnly)

	w := openStream(c)
	found, err := scheduler.Run(c.Request().Context(), h.scheduler, RouteMixMatch, tasks, rec.Search, progressReporter(w))
	if err != nil {
		h.searchStopped(RouteMixMatch, err)
		return nil
	}

	deals, total := ranking.MixMatchDeals(found, params.MaxResults)
	h.metrics.ObserveSearch(RouteMixMatch, time.Since(startTime), len(deals))

	if err := w.Send(models.MixMatchComplete{
		Type:                 models.EventComplete,
		Deals:                deals,
		TotalFound:           total,
		DestinationsSearched: len(dests),
		DatesSearched:        len(pairs),
		MixedAirlineDeals:    mixmatch.CountMixed(deals),
	}); err != nil {
		h.searchStopped(RouteMixMatch, err)
	}
	return nil
}

// prepareSearch binds and validates a streaming search request. When ok is
// false the error response has already been written and err is its result.
func (h *Handler) prepareSearch(c echo.Context, defaultNonstop bool) (models.SearchParams, []airports.Airport, bool, error) {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return models.SearchParams{}, nil, false, invalidRequest(c, err)
	}

	params, err := req.Params(defaultNonstop)
	if err != nil {
		return models.SearchParams{}, nil, false, validationError(c, err)
	}

	dests, err := h.dir.Resolve(params.DestinationCodes)
	if err != nil {
		return models.SearchParams{}, nil, false, validationError(c, err)
	}

	if !h.flights.Configured() {
		return models.SearchParams{}, nil, false, configurationError(c)
	}
	return params, dests, true, nil
}

func (h *Handler) datePairs(p models.SearchParams, w dates.Window) []dates.Pair {
	if p.Mode == models.SearchModeFlexible {
		return dates.Generate(h.today(), p.TripDuration, w)
	}
	return []dates.Pair{{DepartureDate: p.DepartureDate, ReturnDate: p.ReturnDate}}
}

func (h *Handler) roundTripWorker(nonstopOnly bool) scheduler.Worker[models.Deal] {
	origin := h.origin()

	return func(ctx context.Context, t scheduler.Task) ([]models.Deal, error) {
		dest := t.Destination.Code
		candidates, err := h.flights.SearchRoundTrip(ctx, providers.RoundTripQuery{
			Origin:          origin,
			Destination:     dest,
			DepartureDate:   t.Dates.DepartureDate,
			ReturnDate:      t.Dates.ReturnDate,
			DepartureWindow: t.DepartureWindow,
			ReturnWindow:    t.ReturnWindow,
		})
		if err != nil {
			return nil, err
		}

		it, ok := normalizer.SelectRoundTrip(candidates, origin, dest, normalizer.RoundTripCriteria{
			NonstopOnly:     nonstopOnly,
			DepartureWindow: t.DepartureWindow,
			ReturnWindow:    t.ReturnWindow,
		})
		if !ok {
			return nil, nil
		}
		if it.Price == 0 {
			h.metrics.IncMissingPrice(RouteRoundTrip)
		}

		return []models.Deal{{
			DestinationCity:       t.Destination.City,
			DestinationCode:       dest,
			Price:                 it.Price,
			FormattedPrice:        currency.FormatUSD(it.Price),
			Currency:              models.CurrencyUSD,
			DepartureDate:         t.Dates.DepartureDate,
			ReturnDate:            t.Dates.ReturnDate,
			Direct:                it.Direct,
			DeepLink:              booking.GoogleFlightsRoundTrip(origin, dest, t.Dates.DepartureDate, t.Dates.ReturnDate),
			Carriers:              it.Carriers,
			Stops:                 it.Stops,
			OutboundDepartureTime: it.OutboundDeparture,
			OutboundArrivalTime:   it.OutboundArrival,
			ReturnDepartureTime:   it.ReturnDeparture,
			ReturnArrivalTime:     it.ReturnArrival,
		}}, nil
	}
}

// openStream commits the 200 response; no error status can follow.
func openStream(c echo.Context) *stream.Writer {
	res := c.Response()
	stream.SetHeaders(res.Header())
	res.WriteHeader(http.StatusOK)
	return stream.NewWriter(res)
}

func progressReporter(w *stream.Writer) scheduler.ProgressFunc {
	return func(completed, total int) error {
		msg := "Starting search..."
		if completed > 0 {
			msg = fmt.Sprintf("Searched %d of %d combinations...", completed, total)
		}
		return w.Send(models.NewProgress(completed, total, msg))
	}
}

func (h *Handler) searchStopped(route string, err error) {
	if streamEnded(err) {
		h.log.Info("search stopped, client went away", "route", route)
		return
	}
	h.log.Warn("search stream aborted", "route", route, "error", err)
}
