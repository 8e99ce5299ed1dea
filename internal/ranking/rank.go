package ranking

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dharmasatrya/flightdeals/internal/models"
)

// Rank orders items by ascending price, keeping the input order among equal
// prices, drops repeats of an already seen key and keeps at most limit
// items. found is the number of distinct items before truncation.
func Rank[T any](items []T, price func(T) float64, key func(T) string, limit int) (ranked []T, found int) {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		pa, pb := price(a), price(b)
		switch {
		case pa < pb:
			return -1
		case pa > pb:
			return 1
		}
		return 0
	})

	seen := make(map[string]struct{}, len(sorted))
	unique := make([]T, 0, len(sorted))
	for _, it := range sorted {
		k := key(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, it)
	}

	found = len(unique)
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique, found
}

func Deals(deals []models.Deal, limit int) ([]models.Deal, int) {
	return Rank(deals, func(d models.Deal) float64 { return d.Price }, DealKey, limit)
}

func MixMatchDeals(deals []models.MixMatchDeal, limit int) ([]models.MixMatchDeal, int) {
	return Rank(deals, func(d models.MixMatchDeal) float64 { return d.TotalPrice }, MixMatchKey, limit)
}

func DateRangeDeals(deals []models.DateRangeDeal, limit int) ([]models.DateRangeDeal, int) {
	return Rank(deals, func(d models.DateRangeDeal) float64 { return d.Price }, func(d models.DateRangeDeal) string {
		return key(d.DestinationCode, d.DepartureDate, d.ReturnDate, d.DeepLink, strings.Join(d.Carriers, "+"))
	}, limit)
}

func SimplifiedDeals(deals []models.SimplifiedDeal) []models.SimplifiedDeal {
	ranked, _ := Rank(deals, func(d models.SimplifiedDeal) float64 { return d.Price }, func(d models.SimplifiedDeal) string {
		return key(d.DestinationCode, d.OutboundDate, d.InboundDate)
	}, 0)
	return ranked
}

// DealKey identifies a round-trip deal by destination and dates.
func DealKey(d models.Deal) string {
	return key(d.DestinationCode, d.DepartureDate, d.ReturnDate)
}

// MixMatchKey identifies a combination by its dates and both legs. Legs that
// differ only in price or arrival stay distinct.
func MixMatchKey(d models.MixMatchDeal) string {
	return key(d.DestinationCode, d.DepartureDate, d.ReturnDate,
		d.OutboundCarrier, d.OutboundDepartureTime, d.OutboundArrivalTime, money(d.OutboundPrice),
		d.ReturnCarrier, d.ReturnDepartureTime, d.ReturnArrivalTime, money(d.ReturnPrice))
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}
