package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/normalizer"
)

const (
	DefaultFlightsSkyURL = "https://flights-sky.p.rapidapi.com"
	searchRoundTripPath  = "/flights/search-roundtrip"
)

type FlightsSky struct {
	*client
}

func NewFlightsSky(cfg Config, deps Deps) (*FlightsSky, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultFlightsSkyURL
	}
	c, err := newClient(FlightsSkyName, cfg, deps)
	if err != nil {
		return nil, err
	}
	return &FlightsSky{client: c}, nil
}

func (s *FlightsSky) SearchQuotes(ctx context.Context, q QuoteQuery) (*normalizer.SkyResponse, error) {
	var resp *normalizer.SkyResponse
	err := s.fetch(ctx, searchRoundTripPath, quoteParams(q), func(body []byte) error {
		r, err := normalizer.DecodeSky(body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SearchQuotesRaw returns the upstream payload untouched.
func (s *FlightsSky) SearchQuotesRaw(ctx context.Context, q QuoteQuery) (json.RawMessage, error) {
	var raw json.RawMessage
	err := s.fetch(ctx, searchRoundTripPath, quoteParams(q), func(body []byte) error {
		if !json.Valid(body) {
			return errors.New("payload is not valid JSON")
		}
		raw = json.RawMessage(body)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func quoteParams(q QuoteQuery) url.Values {
	params := url.Values{}
	params.Set("fromEntityId", q.Origin)
	params.Set("toEntityId", q.Destination)
	params.Set("departDate", q.DepartureDate)
	params.Set("returnDate", q.ReturnDate)
	params.Set("adults", "1")
	params.Set("cabinClass", "economy")
	params.Set("currency", models.CurrencyUSD)
	params.Set("market", "US")
	params.Set("locale", "en-US")
	return params
}
