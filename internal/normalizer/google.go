package normalizer

import (
	"encoding/json"
	"fmt"

	"github.com/dharmasatrya/flightdeals/internal/filter"
	"github.com/dharmasatrya/flightdeals/internal/models"
)

// GoogleResponse is the google-flights2 searchFlights payload.
type GoogleResponse struct {
	Status  bool            `json:"status"`
	Message json.RawMessage `json:"message,omitempty"`
	Data    struct {
		Itineraries struct {
			TopFlights   []GoogleItinerary `json:"topFlights"`
			OtherFlights []GoogleItinerary `json:"otherFlights"`
		} `json:"itineraries"`
	} `json:"data"`
}

type GoogleItinerary struct {
	Price    Amount          `json:"price"`
	Stops    *int            `json:"stops"`
	Layovers json.RawMessage `json:"layovers"`
	Flights  []Segment       `json:"flights"`
}

func DecodeGoogle(body []byte) (*GoogleResponse, error) {
	var r GoogleResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode google flights payload: %w", err)
	}
	return &r, nil
}

// Candidates returns itineraries in upstream order: topFlights, or
// otherFlights when the upstream left topFlights empty.
func (r *GoogleResponse) Candidates() []GoogleItinerary {
	if len(r.Data.Itineraries.TopFlights) > 0 {
		return r.Data.Itineraries.TopFlights
	}
	return r.Data.Itineraries.OtherFlights
}

// StopCount returns the reported stop count. When stops is missing it is
// inferred from the layover list, or zero.
func (it GoogleItinerary) StopCount() int {
	if it.Stops != nil {
		return *it.Stops
	}
	if layovers, ok := it.layoverCount(); ok {
		return layovers
	}
	return 0
}

// Direct is true when the itinerary reports zero stops, or reports no stop
// count and its layover field is absent or null. A positive stop count is
// never direct, even with null layovers, unlike upstream's own either-or
// rule; this keeps direct deals at zero stops.
func (it GoogleItinerary) Direct() bool {
	if it.Stops != nil {
		return *it.Stops == 0
	}
	if isNull(it.Layovers) {
		return true
	}
	n, ok := it.layoverCount()
	return ok && n == 0
}

func (it GoogleItinerary) layoverCount() (int, bool) {
	if isNull(it.Layovers) {
		return 0, false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(it.Layovers, &list); err != nil {
		return 0, false
	}
	return len(list), true
}

func (it GoogleItinerary) carriers() []string {
	names := make([]string, 0, len(it.Flights))
	for _, seg := range it.Flights {
		names = append(names, seg.Airline())
	}
	return Carriers(names)
}

// Itinerary is the uniform record extracted from one round-trip candidate.
type Itinerary struct {
	Price             float64
	Carriers          []string
	Stops             int
	Direct            bool
	OutboundDeparture string
	OutboundArrival   string
	ReturnDeparture   string
	ReturnArrival     string
}

// RoundTrip normalizes one google-flights2 itinerary for the origin and
// destination it was searched for.
func RoundTrip(it GoogleItinerary, origin, destination string) Itinerary {
	out := Itinerary{
		Price:    float64(it.Price),
		Carriers: it.carriers(),
		Stops:    it.StopCount(),
		Direct:   it.Direct(),
	}
	if len(it.Flights) == 0 {
		return out
	}

	first := it.Flights[0]
	out.OutboundDeparture = first.DepartureTime()
	out.OutboundArrival = first.ArrivalTime()

	if ret, ok := returnLeg(it, origin, destination); ok {
		out.ReturnDeparture = ret.DepartureTime()
		out.ReturnArrival = ret.ArrivalTime()
	}
	return out
}

// returnLeg finds the first segment after index 0 that arrives at the origin
// or departs from the destination. A nonstop itinerary falls back to index 1.
func returnLeg(it GoogleItinerary, origin, destination string) (Segment, bool) {
	if len(it.Flights) < 2 {
		return nil, false
	}
	for _, seg := range it.Flights[1:] {
		if seg.ArrivesAt(origin) || seg.DepartsFrom(destination) {
			return seg, true
		}
	}
	if it.Stops != nil && *it.Stops == 0 {
		return it.Flights[1], true
	}
	return nil, false
}

type RoundTripCriteria struct {
	NonstopOnly     bool
	DepartureWindow models.TimeWindow
	ReturnWindow    models.TimeWindow
}

// SelectRoundTrip returns the first candidate, in upstream order, that
// satisfies c. Upstream orders by price, so this is the cheapest qualifying one.
func SelectRoundTrip(candidates []GoogleItinerary, origin, destination string, c RoundTripCriteria) (Itinerary, bool) {
	for _, cand := range candidates {
		if c.NonstopOnly && !cand.Direct() {
			continue
		}
		it := RoundTrip(cand, origin, destination)
		if !filter.RoundTrip(it.OutboundDeparture, it.ReturnDeparture, c.DepartureWindow, c.ReturnWindow) {
			continue
		}
		return it, true
	}
	return Itinerary{}, false
}

const UnknownCarrier = "Unknown"

// OneWay normalizes a one-way itinerary. Departure comes from the first
// segment and arrival from the last.
func OneWay(it GoogleItinerary) models.OneWayFlight {
	f := models.OneWayFlight{
		Price:   float64(it.Price),
		Carrier: UnknownCarrier,
		Direct:  it.Direct(),
		Stops:   it.StopCount(),
	}
	if carriers := it.carriers(); len(carriers) > 0 {
		f.Carrier = carriers[0]
	}
	if n := len(it.Flights); n > 0 {
		f.DepartureTime = it.Flights[0].DepartureTime()
		f.ArrivalTime = it.Flights[n-1].ArrivalTime()
	}
	return f
}

func OneWays(candidates []GoogleItinerary) []models.OneWayFlight {
	flights := make([]models.OneWayFlight, 0, len(candidates))
	for _, c := range candidates {
		flights = append(flights, OneWay(c))
	}
	return flights
}
