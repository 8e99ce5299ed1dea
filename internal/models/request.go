package models

import (
	"fmt"
	"strconv"

	"github.com/dharmasatrya/flightdeals/internal/dates"
)

type SearchMode string

const (
	SearchModeSpecific SearchMode = "specific"
	SearchModeFlexible SearchMode = "flexible"
)

const (
	MaxDestinations   = 5
	DefaultMaxResults = 100
)

// TimeWindow is an inclusive range of departure hours. Start > End wraps past
// midnight, e.g. {22, 5} accepts 22:00 through 05:59.
type TimeWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var FullDay = TimeWindow{Start: 0, End: 23}

func (w TimeWindow) IsFullDay() bool {
	return w == FullDay
}

// Wraps reports whether the window crosses midnight. Upstream cannot express
// such a window, so it is sent as the full day and applied locally.
func (w TimeWindow) Wraps() bool {
	return w.Start > w.End
}

func (w TimeWindow) Contains(hour int) bool {
	if w.Start <= w.End {
		return hour >= w.Start && hour <= w.End
	}
	return hour >= w.Start || hour <= w.End
}

// Param renders the window the way the upstream expects it: "start,end".
func (w TimeWindow) Param() string {
	return strconv.Itoa(w.Start) + "," + strconv.Itoa(w.End)
}

func (w TimeWindow) valid() bool {
	return validHour(w.Start) && validHour(w.End)
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// SearchRequest is the JSON body accepted by both streaming search routes.
// Optional fields are pointers so absent values can take route defaults.
type SearchRequest struct {
	SearchMode         SearchMode `json:"searchMode"`
	TripDuration       int        `json:"tripDuration,omitempty"`
	DepartureDate      string     `json:"departureDate,omitempty"`
	ReturnDate         string     `json:"returnDate,omitempty"`
	DestinationCodes   []string   `json:"destinationCodes"`
	DepartureTimeStart *int       `json:"departureTimeStart,omitempty"`
	DepartureTimeEnd   *int       `json:"departureTimeEnd,omitempty"`
	ReturnTimeStart    *int       `json:"returnTimeStart,omitempty"`
	ReturnTimeEnd      *int       `json:"returnTimeEnd,omitempty"`
	NonstopOnly        *bool      `json:"nonstopOnly,omitempty"`
	MaxResults         *int       `json:"maxResults,omitempty"`
}

// SearchParams is a validated SearchRequest with defaults applied.
type SearchParams struct {
	Mode             SearchMode
	TripDuration     int
	DepartureDate    string
	ReturnDate       string
	DestinationCodes []string
	DepartureWindow  TimeWindow
	ReturnWindow     TimeWindow
	NonstopOnly      bool
	MaxResults       int
}

// Params validates the request. defaultNonstop differs per route: round-trip
// search defaults to nonstop only, mix-and-match does not.
func (r SearchRequest) Params(defaultNonstop bool) (SearchParams, error) {
	p := SearchParams{
		Mode:             r.SearchMode,
		TripDuration:     r.TripDuration,
		DepartureDate:    r.DepartureDate,
		ReturnDate:       r.ReturnDate,
		DestinationCodes: r.DestinationCodes,
		DepartureWindow:  TimeWindow{Start: intOr(r.DepartureTimeStart, 0), End: intOr(r.DepartureTimeEnd, 23)},
		ReturnWindow:     TimeWindow{Start: intOr(r.ReturnTimeStart, 0), End: intOr(r.ReturnTimeEnd, 23)},
		NonstopOnly:      defaultNonstop,
		MaxResults:       intOr(r.MaxResults, DefaultMaxResults),
	}
	if p.Mode == "" {
		p.Mode = SearchModeSpecific
	}
	if r.NonstopOnly != nil {
		p.NonstopOnly = *r.NonstopOnly
	}

	switch p.Mode {
	case SearchModeSpecific:
		if p.DepartureDate == "" || p.ReturnDate == "" {
			return SearchParams{}, ErrMissingDates
		}
		if !dates.Valid(p.DepartureDate) || !dates.Valid(p.ReturnDate) {
			return SearchParams{}, ErrInvalidDate
		}
		if p.ReturnDate < p.DepartureDate {
			return SearchParams{}, ErrReturnBeforeDeparture
		}
	case SearchModeFlexible:
		if p.TripDuration == 0 {
			return SearchParams{}, ErrMissingTripDuration
		}
		if p.TripDuration < 0 {
			return SearchParams{}, ErrInvalidTripDuration
		}
	default:
		return SearchParams{}, ErrInvalidSearchMode
	}

	if len(p.DestinationCodes) == 0 {
		return SearchParams{}, ErrNoDestinations
	}
	if len(p.DestinationCodes) > MaxDestinations {
		return SearchParams{}, ErrTooManyDestinations
	}

	if !p.DepartureWindow.valid() || !p.ReturnWindow.valid() {
		return SearchParams{}, ErrInvalidHour
	}
	if p.MaxResults < 0 {
		return SearchParams{}, ErrInvalidMaxResults
	}
	if p.MaxResults == 0 {
		p.MaxResults = DefaultMaxResults
	}

	return p, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingDates          ValidationError = "Departure and return dates are required for specific search"
	ErrMissingTripDuration   ValidationError = "Trip duration is required for flexible search"
	ErrInvalidTripDuration   ValidationError = "Trip duration must be a positive number of days"
	ErrInvalidSearchMode     ValidationError = "searchMode must be \"specific\" or \"flexible\""
	ErrInvalidDate           ValidationError = "Dates must use the YYYY-MM-DD format"
	ErrReturnBeforeDeparture ValidationError = "Return date must not be before departure date"
	ErrNoDestinations        ValidationError = "At least one destination is required"
	ErrInvalidHour           ValidationError = "Time window hours must be between 0 and 23"
	ErrInvalidMaxResults     ValidationError = "maxResults must not be negative"
	ErrMissingFlights        ValidationError = "Invalid request: flights array is required"
	ErrMissingDestination    ValidationError = "destinationCode is required"
	ErrInvalidTripLengths    ValidationError = "tripLengthMin and tripLengthMax must be positive and ordered"
	ErrMissingSearchFields   ValidationError = "destinationCode, outboundDate and inboundDate are required"
	ErrMissingDateRange      ValidationError = "startDate and endDate are required"
)

var ErrTooManyDestinations = ValidationError(fmt.Sprintf("Maximum %d destinations allowed", MaxDestinations))
