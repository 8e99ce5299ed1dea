package normalizer

import (
	"encoding/json"
	"fmt"

	"github.com/dharmasatrya/flightdeals/internal/models"
)

// SkyResponse is the flights-sky search-roundtrip payload, reduced to the
// fields the simplified deal needs.
type SkyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Itineraries []SkyItinerary `json:"itineraries"`
	} `json:"data"`
}

type SkyItinerary struct {
	Price struct {
		Raw       Amount `json:"raw"`
		Formatted Amount `json:"formatted"`
	} `json:"price"`
	Legs     []SkyLeg `json:"legs"`
	DeepLink string   `json:"deepLink"`
}

type SkyLeg struct {
	StopCount int `json:"stopCount"`
	Carriers  struct {
		Marketing []struct {
			Name        string `json:"name"`
			AlternateID string `json:"alternateId"`
		} `json:"marketing"`
	} `json:"carriers"`
}

func DecodeSky(body []byte) (*SkyResponse, error) {
	var r SkyResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode flights-sky payload: %w", err)
	}
	return &r, nil
}

// PriceValue prefers the raw price and falls back to the formatted one.
func (it SkyItinerary) PriceValue() float64 {
	if it.Price.Raw != 0 {
		return float64(it.Price.Raw)
	}
	return float64(it.Price.Formatted)
}

// Direct requires at least one leg and zero stops on every leg.
func (it SkyItinerary) Direct() bool {
	if len(it.Legs) == 0 {
		return false
	}
	for _, leg := range it.Legs {
		if leg.StopCount != 0 {
			return false
		}
	}
	return true
}

// Stops is the largest stop count over the legs.
func (it SkyItinerary) Stops() int {
	stops := 0
	for _, leg := range it.Legs {
		stops = max(stops, leg.StopCount)
	}
	return stops
}

func (it SkyItinerary) Carriers() []string {
	var names []string
	for _, leg := range it.Legs {
		for _, c := range leg.Carriers.Marketing {
			name := c.Name
			if name == "" {
				name = c.AlternateID
			}
			names = append(names, name)
		}
	}
	return Carriers(names)
}

// Simplified builds the all-destinations deal from the first itinerary.
func (r *SkyResponse) Simplified(code, city, outbound, inbound string) (models.SimplifiedDeal, bool) {
	if len(r.Data.Itineraries) == 0 {
		return models.SimplifiedDeal{}, false
	}
	it := r.Data.Itineraries[0]
	return models.SimplifiedDeal{
		DestinationCode: code,
		DestinationCity: city,
		Price:           it.PriceValue(),
		OutboundDate:    outbound,
		InboundDate:     inbound,
		Direct:          it.Direct(),
		Carriers:        it.Carriers(),
		DeepLink:        it.DeepLink,
	}, true
}

// DateRangeDeals turns every qualifying itinerary into a deal.
func (r *SkyResponse) DateRangeDeals(code, city, departure, ret string, nonstopOnly bool) []models.DateRangeDeal {
	deals := make([]models.DateRangeDeal, 0, len(r.Data.Itineraries))
	for _, it := range r.Data.Itineraries {
		if nonstopOnly && !it.Direct() {
			continue
		}
		deals = append(deals, models.DateRangeDeal{
			DestinationCity: city,
			DestinationCode: code,
			Price:           it.PriceValue(),
			Currency:        models.CurrencyUSD,
			DepartureDate:   departure,
			ReturnDate:      ret,
			Direct:          it.Direct(),
			DeepLink:        it.DeepLink,
			Carriers:        it.Carriers(),
			Stops:           it.Stops(),
		})
	}
	return deals
}
