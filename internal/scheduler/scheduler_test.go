package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightdeals/internal/airports"
	"github.com/dharmasatrya/flightdeals/internal/dates"
	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/scheduler"
)

func destinations(codes ...string) []airports.Airport {
	out := make([]airports.Airport, 0, len(codes))
	for _, c := range codes {
		out = append(out, airports.Airport{Code: c, City: c})
	}
	return out
}

func pairs(n int) []dates.Pair {
	out := make([]dates.Pair, 0, n)
	start := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, 7*i)
		out = append(out, dates.Pair{DepartureDate: d.Format(dates.Layout), ReturnDate: d.AddDate(0, 0, 2).Format(dates.Layout)})
	}
	return out
}

type progressLog struct {
	mu     sync.Mutex
	events [][2]int
}

func (p *progressLog) record(completed, total int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, [2]int{completed, total})
	return nil
}

func TestBuildTasks_Count(t *testing.T) {
	for _, n := range []int{0, 1, 9} {
		tasks := scheduler.BuildTasks(destinations("MCO", "MIA", "LAX"), pairs(n), models.FullDay, models.FullDay)
		assert.Len(t, tasks, 3*n)
	}

	tasks := scheduler.BuildTasks(destinations("MCO", "MIA"), pairs(2), models.TimeWindow{Start: 6, End: 9}, models.FullDay)
	assert.Equal(t, "MCO", tasks[0].Destination.Code)
	assert.Equal(t, "MCO", tasks[1].Destination.Code)
	assert.Equal(t, "MIA", tasks[2].Destination.Code)
	assert.Equal(t, models.TimeWindow{Start: 6, End: 9}, tasks[3].DepartureWindow)
}

func TestRun_ProgressAndOrder(t *testing.T) {
	s := scheduler.New(scheduler.Config{BatchSize: 10, BatchDelay: time.Millisecond}, nil, nil)
	tasks := scheduler.BuildTasks(destinations("MCO", "MIA", "LAX"), pairs(9), models.FullDay, models.FullDay)

	var p progressLog
	results, err := scheduler.Run(context.Background(), s, "test", tasks, func(_ context.Context, t scheduler.Task) ([]string, error) {
		return []string{t.Destination.Code + "/" + t.Dates.DepartureDate}, nil
	}, p.record)
	require.NoError(t, err)

	require.Len(t, results, 27)
	assert.Equal(t, "MCO/2025-06-06", results[0])
	assert.Equal(t, "LAX/2025-08-01", results[26])

	assert.Equal(t, [][2]int{{0, 27}, {10, 27}, {20, 27}, {27, 27}}, p.events)
}

func TestRun_BatchesAreSequentialAndBounded(t *testing.T) {
	s := scheduler.New(scheduler.Config{BatchSize: 4}, nil, nil)
	tasks := scheduler.BuildTasks(destinations("A", "B", "C"), pairs(3), models.FullDay, models.FullDay)

	var inFlight, peak atomic.Int32
	_, err := scheduler.Run(context.Background(), s, "test", tasks, func(_ context.Context, _ scheduler.Task) ([]int, error) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil, nil
	}, func(int, int) error { return nil })
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestRun_FailuresAreSwallowed(t *testing.T) {
	s := scheduler.New(scheduler.Config{}, nil, nil)
	tasks := scheduler.BuildTasks(destinations("LAX", "MIA"), pairs(1), models.FullDay, models.FullDay)

	results, err := scheduler.Run(context.Background(), s, "test", tasks, func(_ context.Context, t scheduler.Task) ([]string, error) {
		switch t.Destination.Code {
		case "LAX":
			return nil, errors.New("upstream exploded")
		default:
			return []string{t.Destination.Code}, nil
		}
	}, func(int, int) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"MIA"}, results)
}

func TestRun_PanicIsContained(t *testing.T) {
	s := scheduler.New(scheduler.Config{}, nil, nil)
	tasks := scheduler.BuildTasks(destinations("LAX", "MIA"), pairs(1), models.FullDay, models.FullDay)

	results, err := scheduler.Run(context.Background(), s, "test", tasks, func(_ context.Context, t scheduler.Task) ([]string, error) {
		if t.Destination.Code == "LAX" {
			panic("nil map")
		}
		return []string{t.Destination.Code}, nil
	}, func(int, int) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"MIA"}, results)
}

func TestRun_EmptyTaskList(t *testing.T) {
	s := scheduler.New(scheduler.Config{}, nil, nil)

	var p progressLog
	results, err := scheduler.Run(context.Background(), s, "test", nil, func(context.Context, scheduler.Task) ([]int, error) {
		t.Fatal("worker must not run")
		return nil, nil
	}, p.record)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, [][2]int{{0, 0}}, p.events)
}

func TestRun_ProgressErrorStops(t *testing.T) {
	s := scheduler.New(scheduler.Config{BatchSize: 2}, nil, nil)
	tasks := scheduler.BuildTasks(destinations("A"), pairs(6), models.FullDay, models.FullDay)

	var calls atomic.Int32
	writeErr := errors.New("client went away")
	_, err := scheduler.Run(context.Background(), s, "test", tasks, func(context.Context, scheduler.Task) ([]int, error) {
		calls.Add(1)
		return nil, nil
	}, func(completed, _ int) error {
		if completed >= 2 {
			return writeErr
		}
		return nil
	})
	assert.ErrorIs(t, err, writeErr)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRun_CancelStopsFurtherBatches(t *testing.T) {
	s := scheduler.New(scheduler.Config{BatchSize: 2, BatchDelay: time.Hour}, nil, nil)
	tasks := scheduler.BuildTasks(destinations("A"), pairs(6), models.FullDay, models.FullDay)

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		_, err := scheduler.Run(ctx, s, "test", tasks, func(context.Context, scheduler.Task) ([]int, error) {
			calls.Add(1)
			return []int{1}, nil
		}, func(int, int) error { return nil })
		done <- err
	}()

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not stop after cancellation")
	}
	assert.Equal(t, int32(2), calls.Load())
}
