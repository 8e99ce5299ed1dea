// Package dates generates the candidate (departure, return) pairs searched in
// flexible mode.
package dates

import "time"

const Layout = "2006-01-02"

const (
	WeekendTrip = 3
	WeekTrip    = 7

	extendedStepDays = 3
)

type Pair struct {
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate"`
}

// Window bounds candidate departures to day offsets [MinDaysAhead, LookaheadDays) from today.
type Window struct {
	MinDaysAhead  int
	LookaheadDays int
}

// Generate returns the date pairs for a trip of tripDuration days:
//   - 3 (weekend): Friday departures, Sunday returns
//   - 7 (week): Friday, Saturday and Sunday departures
//   - anything else: every third day
//
// today is taken as a calendar date in its own location. An empty window
// yields no pairs.
func Generate(today time.Time, tripDuration int, w Window) []Pair {
	if tripDuration <= 0 || w.MinDaysAhead >= w.LookaheadDays {
		return nil
	}

	base := midnight(today)
	var pairs []Pair

	switch tripDuration {
	case WeekendTrip:
		for i := w.MinDaysAhead; i < w.LookaheadDays; i++ {
			dep := base.AddDate(0, 0, i)
			if dep.Weekday() != time.Friday {
				continue
			}
			pairs = append(pairs, newPair(dep, dep.AddDate(0, 0, 2)))
		}

	case WeekTrip:
		for i := w.MinDaysAhead; i < w.LookaheadDays; i++ {
			dep := base.AddDate(0, 0, i)
			switch dep.Weekday() {
			case time.Friday, time.Saturday, time.Sunday:
			default:
				continue
			}
			pairs = append(pairs, newPair(dep, dep.AddDate(0, 0, tripDuration)))
		}

	default:
		for i := w.MinDaysAhead; i < w.LookaheadDays; i += extendedStepDays {
			dep := base.AddDate(0, 0, i)
			pairs = append(pairs, newPair(dep, dep.AddDate(0, 0, tripDuration)))
		}
	}

	return pairs
}

// Sampled produces the legacy date-range grid: departures 1, 1+interval, ...
// up to daysAhead, each combined with every trip length in [minLen, maxLen].
func Sampled(today time.Time, daysAhead, interval, minLen, maxLen int) []Pair {
	if interval <= 0 || minLen <= 0 || maxLen < minLen {
		return nil
	}

	base := midnight(today)
	var pairs []Pair
	for daysOut := 1; daysOut <= daysAhead; daysOut += interval {
		dep := base.AddDate(0, 0, daysOut)
		for length := minLen; length <= maxLen; length++ {
			pairs = append(pairs, newPair(dep, dep.AddDate(0, 0, length)))
		}
	}
	return pairs
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func newPair(dep, ret time.Time) Pair {
	return Pair{DepartureDate: dep.Format(Layout), ReturnDate: ret.Format(Layout)}
}

// Valid reports whether s is a YYYY-MM-DD calendar date.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}
