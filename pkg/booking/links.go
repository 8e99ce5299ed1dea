// Package booking builds deep links into third-party booking sites. Nothing
// here performs network I/O or checks that a link resolves.
package booking

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	skyscannerBaseURL    = "https://www.skyscanner.com/transport/flights"
	googleFlightsBaseURL = "https://www.google.com/travel/flights"
	kayakBaseURL         = "https://www.kayak.com/flights"
	expediaBaseURL       = "https://www.expedia.com/Flights-Search"
)

// Links holds one deep link per supported booking site.
type Links struct {
	Skyscanner    string `json:"skyscanner"`
	GoogleFlights string `json:"googleFlights"`
	Kayak         string `json:"kayak"`
	Expedia       string `json:"expedia"`
}

// OneWay returns the four single-leg links for origin -> destination on date (YYYY-MM-DD).
func OneWay(origin, destination, date string) Links {
	return Links{
		Skyscanner:    Skyscanner(origin, destination, date),
		GoogleFlights: GoogleFlightsOneWay(origin, destination, date),
		Kayak:         Kayak(origin, destination, date),
		Expedia:       Expedia(origin, destination, date),
	}
}

// Skyscanner uses path segments with a yymmdd date.
func Skyscanner(origin, destination, date string) string {
	return fmt.Sprintf("%s/%s/%s/%s/?adultsv2=1&cabinclass=economy&rtn=0",
		skyscannerBaseURL, origin, destination, compactDate(date))
}

// GoogleFlightsOneWay uses a free-text query.
func GoogleFlightsOneWay(origin, destination, date string) string {
	q := fmt.Sprintf("Flights from %s to %s on %s one way", origin, destination, date)
	return googleFlightsBaseURL + "?q=" + escapeQuery(q)
}

// GoogleFlightsRoundTrip is the single deep link attached to round-trip deals.
func GoogleFlightsRoundTrip(origin, destination, departureDate, returnDate string) string {
	q := fmt.Sprintf("flights from %s to %s on %s to %s", origin, destination, departureDate, returnDate)
	return googleFlightsBaseURL + "?q=" + escapeQuery(q)
}

// Kayak format: /flights/{ORIGIN}-{DEST}/{DATE}/1adults
func Kayak(origin, destination, date string) string {
	return fmt.Sprintf("%s/%s-%s/%s/1adults?sort=bestflight_a", kayakBaseURL, origin, destination, date)
}

func Expedia(origin, destination, date string) string {
	params := url.Values{}
	params.Set("flight-type", "on")
	params.Set("mode", "search")
	params.Set("trip", "oneway")
	params.Set("leg1", fmt.Sprintf("from:%s,to:%s,departure:%sTANYT", origin, destination, date))
	params.Set("passengers", "adults:1")
	params.Set("options", "cabinclass:economy")
	return expediaBaseURL + "?" + params.Encode()
}

// compactDate turns 2025-06-06 into 250606. Dates that do not parse are
// passed through with separators removed.
func compactDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return strings.ReplaceAll(date, "-", "")
	}
	return t.Format("060102")
}

// escapeQuery percent-encodes spaces as %20 rather than '+'.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
