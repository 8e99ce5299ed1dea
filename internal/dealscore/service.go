package dealscore

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/flightdeals/pkg/logger"
)

const (
	HistoryWindow = 30 * 24 * time.Hour
	MinSamples    = 3
	NeutralScore  = 50

	maxConcurrentLookups = 8
)

type Badge string

const (
	BadgeHot   Badge = "hot"
	BadgeGreat Badge = "great"
	BadgeGood  Badge = "good"
	BadgeFair  Badge = "fair"
)

var badgeText = map[Badge]string{
	BadgeHot:   "🔥 Hot Deal!",
	BadgeGreat: "⭐ Great Value",
	BadgeGood:  "💰 Good Deal",
	BadgeFair:  "👍 Fair Price",
}

// HistoryStore is the optional price history. Callers treat an unavailable
// store the same as one with too few samples.
type HistoryStore interface {
	Available() bool
	RecentPrices(ctx context.Context, origin, destination string, since time.Time) ([]float64, error)
}

type Flight struct {
	OriginCode      string  `json:"originCode,omitempty"`
	DestinationCode string  `json:"destinationCode"`
	DepartureDate   string  `json:"departureDate"`
	Price           float64 `json:"price"`
}

type Score struct {
	Score          int    `json:"score"`
	Badge          *Badge `json:"badge"`
	BadgeText      string `json:"badgeText"`
	SavingsPercent *int   `json:"savingsPercent,omitempty"`
	AveragePrice   *int   `json:"averagePrice,omitempty"`
}

func Neutral() Score {
	return Score{Score: NeutralScore}
}

type Service struct {
	store         HistoryStore
	defaultOrigin string
	now           func() time.Time
	log           logger.Logger
}

func NewService(store HistoryStore, defaultOrigin string, now func() time.Time, log logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:         store,
		defaultOrigin: defaultOrigin,
		now:           now,
		log:           log,
	}
}

func (s *Service) Score(ctx context.Context, f Flight) Score {
	if s.store == nil || !s.store.Available() {
		return Neutral()
	}

	origin := s.origin(f)
	prices, err := s.store.RecentPrices(ctx, origin, f.DestinationCode, s.now().Add(-HistoryWindow))
	if err != nil {
		s.log.Warn("price history lookup failed", "origin", origin, "destination", f.DestinationCode, "error", err)
		return Neutral()
	}
	return Compute(prices, f.Price)
}

// ScoreAll scores every flight, keyed "ORIGIN-DEST-DATE".
func (s *Service) ScoreAll(ctx context.Context, flights []Flight) map[string]Score {
	scores := make(map[string]Score, len(flights))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for _, f := range flights {
		f := f
		g.Go(func() error {
			sc := s.Score(ctx, f)
			mu.Lock()
			scores[s.Key(f)] = sc
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return scores
}

func (s *Service) Key(f Flight) string {
	return s.origin(f) + "-" + f.DestinationCode + "-" + f.DepartureDate
}

func (s *Service) origin(f Flight) string {
	if f.OriginCode != "" {
		return f.OriginCode
	}
	return s.defaultOrigin
}

// Compute scores current against historical prices: 100 at the historical
// minimum, 0 at the maximum. The badge follows the savings against the mean.
func Compute(prices []float64, current float64) Score {
	if len(prices) < MinSamples {
		return Neutral()
	}

	lo, hi, sum := prices[0], prices[0], 0.0
	for _, p := range prices {
		lo = min(lo, p)
		hi = max(hi, p)
		sum += p
	}
	avg := sum / float64(len(prices))

	score := NeutralScore
	if hi > lo {
		score = int(math.Round((hi - current) / (hi - lo) * 100))
	}
	score = max(0, min(100, score))

	savings := 0.0
	if avg != 0 {
		savings = (avg - current) / avg * 100
	}

	out := Score{Score: score}
	if b, ok := badgeFor(savings); ok {
		out.Badge = &b
		out.BadgeText = badgeText[b]
	}
	sp := int(math.Round(savings))
	ap := int(math.Round(avg))
	out.SavingsPercent = &sp
	out.AveragePrice = &ap
	return out
}

func badgeFor(savings float64) (Badge, bool) {
	switch {
	case savings >= 25:
		return BadgeHot, true
	case savings >= 15:
		return BadgeGreat, true
	case savings >= 8:
		return BadgeGood, true
	case savings >= 0:
		return BadgeFair, true
	}
	return "", false
}
