package normalizer

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Segment is one flight segment of an upstream itinerary. Its shape differs
// between upstream revisions, so fields are read through alias paths.
type Segment map[string]json.RawMessage

// segmentAliases lists, per logical field, the dotted paths tried in order.
// The first path holding a non-empty string wins.
var segmentAliases = struct {
	DepartureTime []string
	ArrivalTime   []string
	Airline       []string
	ArrivalCode   []string
	DepartureCode []string
}{
	DepartureTime: []string{"departure_time", "departureTime", "departure_airport.time"},
	ArrivalTime:   []string{"arrival_time", "arrivalTime", "arrival_airport.time"},
	Airline:       []string{"airline", "airline_name", "airlineName"},
	ArrivalCode:   []string{"destination", "arrival", "arrival_id", "arrival.code", "arrival_airport.airport_code"},
	DepartureCode: []string{"origin", "departure", "departure_id", "departure.code", "departure_airport.airport_code"},
}

func (s Segment) DepartureTime() string { return s.first(segmentAliases.DepartureTime) }
func (s Segment) ArrivalTime() string   { return s.first(segmentAliases.ArrivalTime) }
func (s Segment) Airline() string       { return s.first(segmentAliases.Airline) }

// ArrivesAt reports whether any arrival alias names code.
func (s Segment) ArrivesAt(code string) bool {
	return s.any(segmentAliases.ArrivalCode, code)
}

// DepartsFrom reports whether any departure alias names code.
func (s Segment) DepartsFrom(code string) bool {
	return s.any(segmentAliases.DepartureCode, code)
}

func (s Segment) first(paths []string) string {
	for _, p := range paths {
		if v, ok := s.str(p); ok && v != "" {
			return v
		}
	}
	return ""
}

func (s Segment) any(paths []string, want string) bool {
	for _, p := range paths {
		if v, ok := s.str(p); ok && strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// str resolves a dotted path. Non-string leaves report ok == false.
func (s Segment) str(path string) (string, bool) {
	raw, ok := resolve(s, strings.Split(path, "."))
	if !ok {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func resolve(obj map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	raw, ok := obj[keys[0]]
	if !ok || isNull(raw) {
		return nil, false
	}
	if len(keys) == 1 {
		return raw, true
	}
	var next map[string]json.RawMessage
	if err := json.Unmarshal(raw, &next); err != nil {
		return nil, false
	}
	return resolve(next, keys[1:])
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Amount decodes a price given either as a JSON number or a numeric string
// such as "$1,234". Anything else decodes to zero.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = 0
	if isNull(b) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*a = Amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*a = Amount(f)
	}
	return nil
}

// Carriers deduplicates names keeping the first occurrence of each, in order.
// Empty names are dropped.
func Carriers(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
