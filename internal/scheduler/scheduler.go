package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/flightdeals/internal/airports"
	"github.com/dharmasatrya/flightdeals/internal/dates"
	"github.com/dharmasatrya/flightdeals/internal/metrics"
	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/pkg/logger"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = 50 * time.Millisecond
)

// Task is one destination and date pair to price.
type Task struct {
	Destination     airports.Airport
	Dates           dates.Pair
	DepartureWindow models.TimeWindow
	ReturnWindow    models.TimeWindow
}

// BuildTasks expands destinations x pairs, destination-major.
func BuildTasks(destinations []airports.Airport, pairs []dates.Pair, departure, ret models.TimeWindow) []Task {
	tasks := make([]Task, 0, len(destinations)*len(pairs))
	for _, d := range destinations {
		for _, p := range pairs {
			tasks = append(tasks, Task{
				Destination:     d,
				Dates:           p,
				DepartureWindow: departure,
				ReturnWindow:    ret,
			})
		}
	}
	return tasks
}

type Config struct {
	BatchSize  int
	BatchDelay time.Duration
}

// Worker prices one task. An error, or a panic, counts as no result for
// that task only.
type Worker[R any] func(ctx context.Context, t Task) ([]R, error)

// ProgressFunc is called once before dispatch and after every batch.
// Returning an error stops the run.
type ProgressFunc func(completed, total int) error

type Scheduler struct {
	batchSize  int
	batchDelay time.Duration
	log        logger.Logger
	metrics    *metrics.Metrics
}

func New(cfg Config, log logger.Logger, m *metrics.Metrics) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if log == nil {
		log = logger.NewNop()
	}
	if m == nil {
		m = metrics.NewMetrics(prometheus.NewRegistry())
	}
	return &Scheduler{
		batchSize:  cfg.BatchSize,
		batchDelay: cfg.BatchDelay,
		log:        log,
		metrics:    m,
	}
}

// Run dispatches tasks in batches. Tasks inside a batch run concurrently,
// batches run one after another with the configured pause between them.
// Results come back in task order. A cancelled ctx or a failing progress
// callback ends the run early with the results gathered so far.
func Run[R any](ctx context.Context, s *Scheduler, route string, tasks []Task, work Worker[R], progress ProgressFunc) ([]R, error) {
	total := len(tasks)
	slots := make([][]R, total)

	if err := progress(0, total); err != nil {
		return nil, err
	}

	completed := 0
	for start := 0; start < total; start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return flatten(slots), err
		}

		end := min(start+s.batchSize, total)

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				slots[i] = runTask(ctx, s, route, tasks[i], work)
				return nil
			})
		}
		_ = g.Wait()

		completed = end
		if err := progress(completed, total); err != nil {
			return flatten(slots), err
		}

		if end < total && s.batchDelay > 0 {
			timer := time.NewTimer(s.batchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return flatten(slots), ctx.Err()
			case <-timer.C:
			}
		}
	}

	return flatten(slots), nil
}

func runTask[R any](ctx context.Context, s *Scheduler, route string, t Task, work Worker[R]) (results []R) {
	defer func() {
		if r := recover(); r != nil {
			s.taskFailed(ctx, route, t, fmt.Errorf("panic: %v", r))
			results = nil
		}
	}()

	results, err := work(ctx, t)
	if err != nil {
		s.taskFailed(ctx, route, t, err)
		return nil
	}

	outcome := metrics.TaskDeal
	if len(results) == 0 {
		outcome = metrics.TaskEmpty
	}
	s.metrics.IncTask(route, outcome)
	return results
}

func (s *Scheduler) taskFailed(ctx context.Context, route string, t Task, err error) {
	s.metrics.IncTask(route, metrics.TaskFailed)
	if ctx.Err() != nil {
		return
	}
	s.log.Warn("search task failed",
		"route", route,
		"destination", t.Destination.Code,
		"departureDate", t.Dates.DepartureDate,
		"returnDate", t.Dates.ReturnDate,
		"error", err,
	)
}

func flatten[R any](slots [][]R) []R {
	n := 0
	for _, s := range slots {
		n += len(s)
	}
	out := make([]R, 0, n)
	for _, s := range slots {
		out = append(out, s...)
	}
	return out
}
