package models

import "math"

const (
	EventProgress = "progress"
	EventComplete = "complete"
)

type ProgressEvent struct {
	Type       string `json:"type"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// NewProgress computes the rounded percentage. An empty search counts as done.
func NewProgress(completed, total int, message string) ProgressEvent {
	pct := 100
	if total > 0 {
		pct = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return ProgressEvent{
		Type:       EventProgress,
		Completed:  completed,
		Total:      total,
		Percentage: pct,
		Message:    message,
	}
}

// SearchParamsEcho repeats the mode-specific request parameters in the
// round-trip completion event.
type SearchParamsEcho struct {
	SearchMode         SearchMode `json:"searchMode"`
	TripDuration       int        `json:"tripDuration,omitempty"`
	DepartureDate      string     `json:"departureDate,omitempty"`
	ReturnDate         string     `json:"returnDate,omitempty"`
	DepartureTimeStart int        `json:"departureTimeStart"`
	DepartureTimeEnd   int        `json:"departureTimeEnd"`
	ReturnTimeStart    int        `json:"returnTimeStart"`
	ReturnTimeEnd      int        `json:"returnTimeEnd"`
	NonstopOnly        bool       `json:"nonstopOnly"`
}

func EchoParams(p SearchParams) SearchParamsEcho {
	e := SearchParamsEcho{
		SearchMode:         p.Mode,
		DepartureTimeStart: p.DepartureWindow.Start,
		DepartureTimeEnd:   p.DepartureWindow.End,
		ReturnTimeStart:    p.ReturnWindow.Start,
		ReturnTimeEnd:      p.ReturnWindow.End,
		NonstopOnly:        p.NonstopOnly,
	}
	if p.Mode == SearchModeFlexible {
		e.TripDuration = p.TripDuration
	} else {
		e.DepartureDate = p.DepartureDate
		e.ReturnDate = p.ReturnDate
	}
	return e
}

type RoundTripComplete struct {
	Type                 string           `json:"type"`
	Deals                []Deal           `json:"deals"`
	TotalFound           int              `json:"totalFound"`
	DestinationsSearched int              `json:"destinationsSearched"`
	DatesSearched        int              `json:"datesSearched"`
	SearchParams         SearchParamsEcho `json:"searchParams"`
}

type MixMatchComplete struct {
	Type                 string         `json:"type"`
	Deals                []MixMatchDeal `json:"deals"`
	TotalFound           int            `json:"totalFound"`
	DestinationsSearched int            `json:"destinationsSearched"`
	DatesSearched        int            `json:"datesSearched"`
	MixedAirlineDeals    int            `json:"mixedAirlineDeals"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
