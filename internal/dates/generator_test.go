package dates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightdeals/internal/dates"
)

// 2025-06-04 is a Wednesday.
var wednesday = time.Date(2025, time.June, 4, 15, 30, 0, 0, time.UTC)

var (
	roundTripWindow = dates.Window{MinDaysAhead: 0, LookaheadDays: 60}
	mixMatchWindow  = dates.Window{MinDaysAhead: 3, LookaheadDays: 30}
)

func parse(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dates.Layout, s)
	require.NoError(t, err)
	return d
}

func TestGenerate_Weekend(t *testing.T) {
	pairs := dates.Generate(wednesday, dates.WeekendTrip, roundTripWindow)
	require.Len(t, pairs, 9)
	assert.Equal(t, dates.Pair{DepartureDate: "2025-06-06", ReturnDate: "2025-06-08"}, pairs[0])

	for _, p := range pairs {
		dep := parse(t, p.DepartureDate)
		ret := parse(t, p.ReturnDate)
		assert.Equal(t, time.Friday, dep.Weekday(), p.DepartureDate)
		assert.Equal(t, dep.AddDate(0, 0, 2), ret)
	}
}

func TestGenerate_WeekendMinDaysAhead(t *testing.T) {
	pairs := dates.Generate(wednesday, dates.WeekendTrip, mixMatchWindow)
	require.Len(t, pairs, 3)
	assert.Equal(t, "2025-06-13", pairs[0].DepartureDate)
}

func TestGenerate_Week(t *testing.T) {
	pairs := dates.Generate(wednesday, dates.WeekTrip, roundTripWindow)
	require.Len(t, pairs, 26)

	for _, p := range pairs {
		dep := parse(t, p.DepartureDate)
		ret := parse(t, p.ReturnDate)
		wd := dep.Weekday()
		assert.True(t, wd == time.Friday || wd == time.Saturday || wd == time.Sunday, p.DepartureDate)
		assert.Equal(t, dep.AddDate(0, 0, 7), ret)
		assert.LessOrEqual(t, ret.Sub(parse(t, "2025-06-04")), time.Duration(60+7)*24*time.Hour)
	}
}

func TestGenerate_Extended(t *testing.T) {
	pairs := dates.Generate(wednesday, 10, roundTripWindow)
	require.Len(t, pairs, 20)
	assert.Equal(t, dates.Pair{DepartureDate: "2025-06-04", ReturnDate: "2025-06-14"}, pairs[0])
	assert.Equal(t, "2025-06-07", pairs[1].DepartureDate)

	mm := dates.Generate(wednesday, 10, mixMatchWindow)
	require.Len(t, mm, 9)
	assert.Equal(t, "2025-06-07", mm[0].DepartureDate)
}

func TestGenerate_EmptyWindow(t *testing.T) {
	assert.Empty(t, dates.Generate(wednesday, dates.WeekendTrip, dates.Window{MinDaysAhead: 30, LookaheadDays: 30}))
	assert.Empty(t, dates.Generate(wednesday, dates.WeekTrip, dates.Window{MinDaysAhead: 40, LookaheadDays: 10}))
	assert.Empty(t, dates.Generate(wednesday, 0, roundTripWindow))
}

func TestGenerate_Deterministic(t *testing.T) {
	a := dates.Generate(wednesday, dates.WeekTrip, roundTripWindow)
	b := dates.Generate(wednesday.Add(5*time.Hour), dates.WeekTrip, roundTripWindow)
	assert.Equal(t, a, b)
}

func TestGenerate_UsesLocalCalendarDate(t *testing.T) {
	loc, err := time.LoadLocation("America/Indiana/Indianapolis")
	require.NoError(t, err)

	// 02:00 UTC Thursday is still Wednesday evening in Indianapolis.
	now := time.Date(2025, time.June, 5, 2, 0, 0, 0, time.UTC).In(loc)
	pairs := dates.Generate(now, dates.WeekendTrip, roundTripWindow)
	require.NotEmpty(t, pairs)
	assert.Equal(t, "2025-06-06", pairs[0].DepartureDate)
}

func TestSampled(t *testing.T) {
	pairs := dates.Sampled(wednesday, 7, 3, 3, 4)
	// departures at +1, +4, +7, two trip lengths each
	require.Len(t, pairs, 6)
	assert.Equal(t, dates.Pair{DepartureDate: "2025-06-05", ReturnDate: "2025-06-08"}, pairs[0])
	assert.Equal(t, dates.Pair{DepartureDate: "2025-06-05", ReturnDate: "2025-06-09"}, pairs[1])
	assert.Equal(t, "2025-06-11", pairs[5].DepartureDate)

	assert.Empty(t, dates.Sampled(wednesday, 7, 0, 3, 4))
	assert.Empty(t, dates.Sampled(wednesday, 7, 3, 5, 4))
}

func TestValid(t *testing.T) {
	assert.True(t, dates.Valid("2025-06-06"))
	assert.False(t, dates.Valid("06/06/2025"))
	assert.False(t, dates.Valid(""))
}
