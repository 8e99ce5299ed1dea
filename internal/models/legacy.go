package models

import "github.com/dharmasatrya/flightdeals/internal/dates"

// Request and response shapes of the single-destination routes that predate
// the streaming search.

type FlightSearchRequest struct {
	DestinationCode string `json:"destinationCode"`
	OutboundDate    string `json:"outboundDate"`
	InboundDate     string `json:"inboundDate"`
}

func (r FlightSearchRequest) Validate() error {
	if r.DestinationCode == "" || r.OutboundDate == "" || r.InboundDate == "" {
		return ErrMissingSearchFields
	}
	if !dates.Valid(r.OutboundDate) || !dates.Valid(r.InboundDate) {
		return ErrInvalidDate
	}
	return nil
}

type AllDestinationsRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
	DirectOnly bool     `json:"directOnly"`
}

func (r AllDestinationsRequest) Validate() error {
	if r.StartDate == "" || r.EndDate == "" {
		return ErrMissingDateRange
	}
	if !dates.Valid(r.StartDate) || !dates.Valid(r.EndDate) {
		return ErrInvalidDate
	}
	return nil
}

type SimplifiedDeal struct {
	DestinationCode string   `json:"destinationCode"`
	DestinationCity string   `json:"destinationCity"`
	Price           float64  `json:"price"`
	OutboundDate    string   `json:"outboundDate"`
	InboundDate     string   `json:"inboundDate"`
	Direct          bool     `json:"direct"`
	Carriers        []string `json:"carriers"`
	DeepLink        string   `json:"deepLink,omitempty"`
}

type AllDestinationsResponse struct {
	Deals []SimplifiedDeal `json:"deals"`
	Total int              `json:"total"`
}

type DateRangeRequest struct {
	DestinationCode string `json:"destinationCode"`
	DaysAhead       *int   `json:"daysAhead,omitempty"`
	TripLengthMin   *int   `json:"tripLengthMin,omitempty"`
	TripLengthMax   *int   `json:"tripLengthMax,omitempty"`
	NonstopOnly     *bool  `json:"nonstopOnly,omitempty"`
}

type DateRangeParams struct {
	DestinationCode string `json:"destinationCode"`
	DaysAhead       int    `json:"daysAhead"`
	TripLengthMin   int    `json:"tripLengthMin"`
	TripLengthMax   int    `json:"tripLengthMax"`
	NonstopOnly     bool   `json:"nonstopOnly"`
}

// Params applies the route defaults: 90 days ahead, 3-7 day trips, nonstop only.
func (r DateRangeRequest) Params() (DateRangeParams, error) {
	p := DateRangeParams{
		DestinationCode: r.DestinationCode,
		DaysAhead:       intOr(r.DaysAhead, 90),
		TripLengthMin:   intOr(r.TripLengthMin, 3),
		TripLengthMax:   intOr(r.TripLengthMax, 7),
		NonstopOnly:     true,
	}
	if r.NonstopOnly != nil {
		p.NonstopOnly = *r.NonstopOnly
	}
	if p.DestinationCode == "" {
		return DateRangeParams{}, ErrMissingDestination
	}
	if p.TripLengthMin <= 0 || p.TripLengthMax < p.TripLengthMin {
		return DateRangeParams{}, ErrInvalidTripLengths
	}
	return p, nil
}

type DateRangeDeal struct {
	DestinationCity string   `json:"destinationCity"`
	DestinationCode string   `json:"destinationCode"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	DepartureDate   string   `json:"departureDate"`
	ReturnDate      string   `json:"returnDate"`
	Direct          bool     `json:"direct"`
	DeepLink        string   `json:"deepLink,omitempty"`
	Carriers        []string `json:"carriers"`
	Stops           int      `json:"stops"`
}

type DateRangeResponse struct {
	Deals         []DateRangeDeal `json:"deals"`
	TotalSearched int             `json:"totalSearched"`
	SearchParams  DateRangeParams `json:"searchParams"`
}
