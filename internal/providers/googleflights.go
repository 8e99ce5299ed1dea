package providers

import (
	"context"
	"net/url"

	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/normalizer"
)

const (
	DefaultGoogleFlightsURL = "https://google-flights2.p.rapidapi.com"
	searchFlightsPath       = "/api/v1/searchFlights"
)

type GoogleFlights struct {
	*client
}

func NewGoogleFlights(cfg Config, deps Deps) (*GoogleFlights, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGoogleFlightsURL
	}
	c, err := newClient(GoogleFlightsName, cfg, deps)
	if err != nil {
		return nil, err
	}
	return &GoogleFlights{client: c}, nil
}

func (g *GoogleFlights) SearchRoundTrip(ctx context.Context, q RoundTripQuery) ([]normalizer.GoogleItinerary, error) {
	params := baseSearchParams(q.Origin, q.Destination, q.DepartureDate, q.DepartureWindow)
	params.Set("return_date", q.ReturnDate)
	params.Set("return_times", upstreamTimes(q.ReturnWindow))
	return g.search(ctx, params)
}

func (g *GoogleFlights) SearchOneWay(ctx context.Context, q OneWayQuery) ([]normalizer.GoogleItinerary, error) {
	params := baseSearchParams(q.Origin, q.Destination, q.Date, q.Window)
	params.Set("flight_type", "one_way")
	return g.search(ctx, params)
}

func (g *GoogleFlights) search(ctx context.Context, params url.Values) ([]normalizer.GoogleItinerary, error) {
	var candidates []normalizer.GoogleItinerary
	err := g.fetch(ctx, searchFlightsPath, params, func(body []byte) error {
		resp, err := normalizer.DecodeGoogle(body)
		if err != nil {
			return err
		}
		if !resp.Status {
			return ErrUpstreamUnsuccessful
		}
		candidates = resp.Candidates()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func baseSearchParams(origin, destination, date string, window models.TimeWindow) url.Values {
	params := url.Values{}
	params.Set("departure_id", origin)
	params.Set("arrival_id", destination)
	params.Set("outbound_date", date)
	params.Set("outbound_times", upstreamTimes(window))
	params.Set("travel_class", "ECONOMY")
	params.Set("adults", "1")
	params.Set("show_hidden", "1")
	params.Set("currency", models.CurrencyUSD)
	params.Set("language_code", "en-US")
	params.Set("country_code", "US")
	params.Set("search_type", "best")
	return params
}

// upstreamTimes sends wrapping windows as the full day; those are narrowed
// locally after normalization.
func upstreamTimes(w models.TimeWindow) string {
	if w.Wraps() {
		return models.FullDay.Param()
	}
	return w.Param()
}
