package providers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/providers"
)

const oneItinerary = `{"status":true,"data":{"itineraries":{"topFlights":[{"price":210,"stops":0,"flights":[{"airline":"Southwest"}]}]}}}`

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memCache) Set(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = payload
	return nil
}

func (m *memCache) Close() error { return nil }

func newGoogle(t *testing.T, srv *httptest.Server, key string, deps providers.Deps) *providers.GoogleFlights {
	t.Helper()
	g, err := providers.NewGoogleFlights(providers.Config{BaseURL: srv.URL, APIKey: key}, deps)
	require.NoError(t, err)
	return g
}

func TestGoogleFlights_RoundTripRequest(t *testing.T) {
	var got url.Values
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/searchFlights", r.URL.Path)
		got = r.URL.Query()
		headers = r.Header.Clone()
		_, _ = w.Write([]byte(oneItinerary))
	}))
	defer srv.Close()

	g := newGoogle(t, srv, "secret", providers.Deps{})
	its, err := g.SearchRoundTrip(context.Background(), providers.RoundTripQuery{
		Origin:          "IND",
		Destination:     "MCO",
		DepartureDate:   "2025-06-06",
		ReturnDate:      "2025-06-09",
		DepartureWindow: models.TimeWindow{Start: 6, End: 12},
		ReturnWindow:    models.TimeWindow{Start: 22, End: 4},
	})
	require.NoError(t, err)
	require.Len(t, its, 1)

	assert.Equal(t, "IND", got.Get("departure_id"))
	assert.Equal(t, "MCO", got.Get("arrival_id"))
	assert.Equal(t, "2025-06-06", got.Get("outbound_date"))
	assert.Equal(t, "2025-06-09", got.Get("return_date"))
	assert.Equal(t, "6,12", got.Get("outbound_times"))
	assert.Equal(t, "0,23", got.Get("return_times"))
	assert.Equal(t, "ECONOMY", got.Get("travel_class"))
	assert.Equal(t, "USD", got.Get("currency"))
	assert.Empty(t, got.Get("flight_type"))

	assert.Equal(t, "secret", headers.Get("x-rapidapi-key"))
	assert.NotEmpty(t, headers.Get("x-rapidapi-host"))
}

func TestGoogleFlights_OneWayRequest(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(oneItinerary))
	}))
	defer srv.Close()

	g := newGoogle(t, srv, "secret", providers.Deps{})
	_, err := g.SearchOneWay(context.Background(), providers.OneWayQuery{
		Origin: "MCO", Destination: "IND", Date: "2025-06-09", Window: models.FullDay,
	})
	require.NoError(t, err)

	assert.Equal(t, "one_way", got.Get("flight_type"))
	assert.Equal(t, "MCO", got.Get("departure_id"))
	assert.Equal(t, "0,23", got.Get("outbound_times"))
	assert.Empty(t, got.Get("return_date"))
}

func TestGoogleFlights_Errors(t *testing.T) {
	var status atomic.Int32
	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	defer srv.Close()

	g := newGoogle(t, srv, "secret", providers.Deps{})
	q := providers.OneWayQuery{Origin: "IND", Destination: "LAX", Date: "2025-06-06", Window: models.FullDay}

	status.Store(http.StatusTooManyRequests)
	body.Store(`{"message":"quota"}`)
	_, err := g.SearchOneWay(context.Background(), q)
	require.Error(t, err)
	assert.True(t, errors.Is(err, providers.ErrUpstreamStatus))
	var perr *providers.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, providers.GoogleFlightsName, perr.Provider)

	status.Store(http.StatusOK)
	body.Store(`{"status":false,"message":"bad date"}`)
	_, err = g.SearchOneWay(context.Background(), q)
	assert.True(t, errors.Is(err, providers.ErrUpstreamUnsuccessful))

	body.Store(`not json`)
	_, err = g.SearchOneWay(context.Background(), q)
	assert.Error(t, err)
}

func TestMissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	g := newGoogle(t, srv, "", providers.Deps{})
	assert.False(t, g.Configured())

	_, err := g.SearchOneWay(context.Background(), providers.OneWayQuery{Origin: "IND", Destination: "MCO", Date: "2025-06-06"})
	assert.True(t, errors.Is(err, providers.ErrMissingAPIKey))
	assert.Zero(t, calls.Load())
}

func TestPayloadCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(oneItinerary))
	}))
	defer srv.Close()

	g := newGoogle(t, srv, "secret", providers.Deps{Cache: newMemCache()})
	q := providers.OneWayQuery{Origin: "IND", Destination: "MCO", Date: "2025-06-06", Window: models.FullDay}

	for i := 0; i < 3; i++ {
		its, err := g.SearchOneWay(context.Background(), q)
		require.NoError(t, err)
		require.Len(t, its, 1)
	}
	assert.Equal(t, int32(1), calls.Load())

	q.Date = "2025-06-07"
	_, err := g.SearchOneWay(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUnsuccessfulPayloadIsNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":false}`))
	}))
	defer srv.Close()

	g := newGoogle(t, srv, "secret", providers.Deps{Cache: newMemCache()})
	q := providers.OneWayQuery{Origin: "IND", Destination: "MCO", Date: "2025-06-06", Window: models.FullDay}

	_, _ = g.SearchOneWay(context.Background(), q)
	_, _ = g.SearchOneWay(context.Background(), q)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFlightsSky(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flights/search-roundtrip", r.URL.Path)
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"status":true,"data":{"itineraries":[{"price":{"raw":150},"legs":[{"stopCount":0}],"deepLink":"https://sky/x"}]}}`))
	}))
	defer srv.Close()

	s, err := providers.NewFlightsSky(providers.Config{BaseURL: srv.URL, APIKey: "secret"}, providers.Deps{})
	require.NoError(t, err)

	q := providers.QuoteQuery{Origin: "IND", Destination: "DEN", DepartureDate: "2025-06-06", ReturnDate: "2025-06-09"}
	resp, err := s.SearchQuotes(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, resp.Data.Itineraries, 1)

	assert.Equal(t, "IND", got.Get("fromEntityId"))
	assert.Equal(t, "DEN", got.Get("toEntityId"))
	assert.Equal(t, "2025-06-06", got.Get("departDate"))
	assert.Equal(t, "2025-06-09", got.Get("returnDate"))
	assert.Equal(t, "economy", got.Get("cabinClass"))
	assert.Equal(t, "US", got.Get("market"))

	raw, err := s.SearchQuotesRaw(context.Background(), q)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"deepLink":"https://sky/x"`)
}

func TestInvalidBaseURL(t *testing.T) {
	_, err := providers.NewGoogleFlights(providers.Config{BaseURL: "::nope"}, providers.Deps{})
	assert.Error(t, err)
}
