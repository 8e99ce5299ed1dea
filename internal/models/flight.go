package models

import "github.com/dharmasatrya/flightdeals/pkg/booking"

const CurrencyUSD = "USD"

// Deal is the best round-trip itinerary found for one destination and date pair.
type Deal struct {
	DestinationCity       string   `json:"destinationCity"`
	DestinationCode       string   `json:"destinationCode"`
	Price                 float64  `json:"price"`
	FormattedPrice        string   `json:"formattedPrice"`
	Currency              string   `json:"currency"`
	DepartureDate         string   `json:"departureDate"`
	ReturnDate            string   `json:"returnDate"`
	Direct                bool     `json:"direct"`
	DeepLink              string   `json:"deepLink,omitempty"`
	Carriers              []string `json:"carriers"`
	Stops                 int      `json:"stops"`
	OutboundDepartureTime string   `json:"outboundDepartureTime,omitempty"`
	OutboundArrivalTime   string   `json:"outboundArrivalTime,omitempty"`
	ReturnDepartureTime   string   `json:"returnDepartureTime,omitempty"`
	ReturnArrivalTime     string   `json:"returnArrivalTime,omitempty"`
}

// OneWayFlight is one candidate leg in mix-and-match mode.
type OneWayFlight struct {
	Price         float64 `json:"price"`
	Carrier       string  `json:"carrier"`
	Direct        bool    `json:"direct"`
	DepartureTime string  `json:"departureTime,omitempty"`
	ArrivalTime   string  `json:"arrivalTime,omitempty"`
	Stops         int     `json:"stops"`
}

// MixMatchDeal pairs an outbound and a return one-way fare.
// TotalPrice == OutboundPrice + ReturnPrice and
// IsMixedAirlines == (OutboundCarrier != ReturnCarrier).
type MixMatchDeal struct {
	DestinationCity     string  `json:"destinationCity"`
	DestinationCode     string  `json:"destinationCode"`
	TotalPrice          float64 `json:"totalPrice"`
	FormattedTotalPrice string  `json:"formattedTotalPrice"`
	Currency            string  `json:"currency"`
	DepartureDate       string  `json:"departureDate"`
	ReturnDate          string  `json:"returnDate"`

	OutboundPrice         float64 `json:"outboundPrice"`
	OutboundCarrier       string  `json:"outboundCarrier"`
	OutboundDirect        bool    `json:"outboundDirect"`
	OutboundDepartureTime string  `json:"outboundDepartureTime,omitempty"`
	OutboundArrivalTime   string  `json:"outboundArrivalTime,omitempty"`
	OutboundStops         int     `json:"outboundStops"`

	ReturnPrice         float64 `json:"returnPrice"`
	ReturnCarrier       string  `json:"returnCarrier"`
	ReturnDirect        bool    `json:"returnDirect"`
	ReturnDepartureTime string  `json:"returnDepartureTime,omitempty"`
	ReturnArrivalTime   string  `json:"returnArrivalTime,omitempty"`
	ReturnStops         int     `json:"returnStops"`

	IsMixedAirlines bool `json:"isMixedAirlines"`

	BookingLinksOutbound booking.Links `json:"bookingLinksOutbound"`
	BookingLinksReturn   booking.Links `json:"bookingLinksReturn"`

	DeepLinkOutbound string `json:"deepLinkOutbound,omitempty"`
	DeepLinkReturn   string `json:"deepLinkReturn,omitempty"`
}
