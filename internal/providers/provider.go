package providers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/normalizer"
)

const (
	GoogleFlightsName = "google-flights2"
	FlightsSkyName    = "flights-sky"
)

var (
	ErrMissingAPIKey        = errors.New("RapidAPI key not configured")
	ErrUpstreamStatus       = errors.New("upstream returned non-2xx status")
	ErrUpstreamUnsuccessful = errors.New("upstream reported an unsuccessful search")
)

type Provider interface {
	Name() string
	Configured() bool
}

// FlightSearcher issues itinerary searches against google-flights2.
type FlightSearcher interface {
	Provider
	SearchRoundTrip(ctx context.Context, q RoundTripQuery) ([]normalizer.GoogleItinerary, error)
	SearchOneWay(ctx context.Context, q OneWayQuery) ([]normalizer.GoogleItinerary, error)
}

// QuoteSearcher issues round-trip quote searches against flights-sky.
type QuoteSearcher interface {
	Provider
	SearchQuotes(ctx context.Context, q QuoteQuery) (*normalizer.SkyResponse, error)
	SearchQuotesRaw(ctx context.Context, q QuoteQuery) (json.RawMessage, error)
}

type RoundTripQuery struct {
	Origin          string
	Destination     string
	DepartureDate   string
	ReturnDate      string
	DepartureWindow models.TimeWindow
	ReturnWindow    models.TimeWindow
}

type OneWayQuery struct {
	Origin      string
	Destination string
	Date        string
	Window      models.TimeWindow
}

type QuoteQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}
