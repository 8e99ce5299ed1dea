package filter

import (
	"strings"
	"time"

	"github.com/dharmasatrya/flightdeals/internal/models"
)

// Upstream time strings are local wall-clock times; the hour is read as written.
var timeLayouts = []string{
	"2006-1-2 15:04",
	"2006-1-2 15:04:05",
	"2-1-2006 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"15:04",
	"3:04 PM",
	"3:04PM",
}

// ParseHour extracts the hour of day from an upstream departure time.
func ParseHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// AcceptDeparture reports whether a flight leaving at departure satisfies w.
// Under the full-day window every flight passes, parseable or not; a
// narrowed window rejects times it cannot read.
func AcceptDeparture(w models.TimeWindow, departure string) bool {
	if w.IsFullDay() {
		return true
	}
	hour, ok := ParseHour(departure)
	if !ok {
		return false
	}
	return w.Contains(hour)
}

// RoundTrip applies the time windows to both legs of a normalized itinerary.
// An itinerary without a return segment passes a non-wrapping return window
// unchecked, since upstream already applied it.
func RoundTrip(outboundDeparture, returnDeparture string, out, ret models.TimeWindow) bool {
	if !AcceptDeparture(out, outboundDeparture) {
		return false
	}
	if returnDeparture == "" && !ret.Wraps() {
		return true
	}
	return AcceptDeparture(ret, returnDeparture)
}

type LegCriteria struct {
	NonstopOnly bool
	Window      models.TimeWindow
	// Limit keeps at most this many matching legs; zero keeps all.
	Limit int
}

// Legs filters one-way candidates in upstream order.
func Legs(flights []models.OneWayFlight, c LegCriteria) []models.OneWayFlight {
	result := make([]models.OneWayFlight, 0, len(flights))

	for _, f := range flights {
		if c.Limit > 0 && len(result) == c.Limit {
			break
		}
		if c.NonstopOnly && !f.Direct {
			continue
		}
		if !AcceptDeparture(c.Window, f.DepartureTime) {
			continue
		}
		result = append(result, f)
	}

	return result
}

type DealCriteria struct {
	// MaxPrice of nil or zero means no limit.
	MaxPrice   *float64
	DirectOnly bool
}

func Deals(deals []models.SimplifiedDeal, c DealCriteria) []models.SimplifiedDeal {
	result := make([]models.SimplifiedDeal, 0, len(deals))

	for _, d := range deals {
		if c.MaxPrice != nil && *c.MaxPrice > 0 && d.Price > *c.MaxPrice {
			continue
		}
		if c.DirectOnly && !d.Direct {
			continue
		}
		result = append(result, d)
	}

	return result
}
