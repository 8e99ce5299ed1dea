package mixmatch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/flightdeals/internal/airports"
	"github.com/dharmasatrya/flightdeals/internal/dates"
	"github.com/dharmasatrya/flightdeals/internal/filter"
	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/normalizer"
	"github.com/dharmasatrya/flightdeals/internal/providers"
	"github.com/dharmasatrya/flightdeals/internal/scheduler"
	"github.com/dharmasatrya/flightdeals/pkg/booking"
	"github.com/dharmasatrya/flightdeals/pkg/currency"
)

// LegsPerDirection caps the one-way candidates kept per direction, so a
// task yields at most 9 combinations.
const LegsPerDirection = 3

type OneWaySearcher interface {
	SearchOneWay(ctx context.Context, q providers.OneWayQuery) ([]normalizer.GoogleItinerary, error)
}

type Recombiner struct {
	flights     OneWaySearcher
	origin      string
	nonstopOnly bool
}

func NewRecombiner(flights OneWaySearcher, origin string, nonstopOnly bool) *Recombiner {
	return &Recombiner{
		flights:     flights,
		origin:      origin,
		nonstopOnly: nonstopOnly,
	}
}

// Search queries both directions of t concurrently and combines the legs.
// Either direction failing fails the task.
func (r *Recombiner) Search(ctx context.Context, t scheduler.Task) ([]models.MixMatchDeal, error) {
	var outbound, inbound []models.OneWayFlight

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		legs, err := r.legs(gctx, r.origin, t.Destination.Code, t.Dates.DepartureDate, t.DepartureWindow)
		if err != nil {
			return fmt.Errorf("outbound: %w", err)
		}
		outbound = legs
		return nil
	})
	g.Go(func() error {
		legs, err := r.legs(gctx, t.Destination.Code, r.origin, t.Dates.ReturnDate, t.ReturnWindow)
		if err != nil {
			return fmt.Errorf("return: %w", err)
		}
		inbound = legs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Combine(r.origin, t.Destination, t.Dates, outbound, inbound), nil
}

func (r *Recombiner) legs(ctx context.Context, from, to, date string, window models.TimeWindow) ([]models.OneWayFlight, error) {
	its, err := r.flights.SearchOneWay(ctx, providers.OneWayQuery{
		Origin:      from,
		Destination: to,
		Date:        date,
		Window:      window,
	})
	if err != nil {
		return nil, err
	}
	return filter.Legs(normalizer.OneWays(its), filter.LegCriteria{
		NonstopOnly: r.nonstopOnly,
		Window:      window,
		Limit:       LegsPerDirection,
	}), nil
}

// Combine pairs every outbound leg with every return leg, outbound-major.
func Combine(origin string, dest airports.Airport, pair dates.Pair, outbound, inbound []models.OneWayFlight) []models.MixMatchDeal {
	if len(outbound) == 0 || len(inbound) == 0 {
		return nil
	}

	outLinks := booking.OneWay(origin, dest.Code, pair.DepartureDate)
	retLinks := booking.OneWay(dest.Code, origin, pair.ReturnDate)

	deals := make([]models.MixMatchDeal, 0, len(outbound)*len(inbound))
	for _, out := range outbound {
		for _, ret := range inbound {
			total := out.Price + ret.Price
			deals = append(deals, models.MixMatchDeal{
				DestinationCity:     dest.City,
				DestinationCode:     dest.Code,
				TotalPrice:          total,
				FormattedTotalPrice: currency.FormatUSD(total),
				Currency:            models.CurrencyUSD,
				DepartureDate:       pair.DepartureDate,
				ReturnDate:          pair.ReturnDate,

				OutboundPrice:         out.Price,
				OutboundCarrier:       out.Carrier,
				OutboundDirect:        out.Direct,
				OutboundDepartureTime: out.DepartureTime,
				OutboundArrivalTime:   out.ArrivalTime,
				OutboundStops:         out.Stops,

				ReturnPrice:         ret.Price,
				ReturnCarrier:       ret.Carrier,
				ReturnDirect:        ret.Direct,
				ReturnDepartureTime: ret.DepartureTime,
				ReturnArrivalTime:   ret.ArrivalTime,
				ReturnStops:         ret.Stops,

				IsMixedAirlines: out.Carrier != ret.Carrier,

				BookingLinksOutbound: outLinks,
				BookingLinksReturn:   retLinks,
				DeepLinkOutbound:     outLinks.Skyscanner,
				DeepLinkReturn:       retLinks.Skyscanner,
			})
		}
	}
	return deals
}

func CountMixed(deals []models.MixMatchDeal) int {
	n := 0
	for _, d := range deals {
		if d.IsMixedAirlines {
			n++
		}
	}
	return n
}
