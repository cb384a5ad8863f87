package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

// DefaultSettleDelay is how long after a candle close the first poll waits
// for the exchange to publish the closed bar.
const DefaultSettleDelay = 2 * time.Second

// repeatedFailures of one category within the recent errors raise a warning
const repeatedFailures = 5

// Runner drives a set of controllers, each on the cadence of its interval
type Runner struct {
	controllers []*DirectionalController
	settle      time.Duration
	cycleLimit  time.Duration
	logger      zerolog.Logger
	after       func(time.Duration) <-chan time.Time
	now         func() time.Time

	mu    sync.Mutex
	stats *sigerrors.ErrorStats
}

// NewRunner creates a runner for controllers
func NewRunner(logger zerolog.Logger, controllers ...*DirectionalController) *Runner {
	return &Runner{
		controllers: controllers,
		settle:      DefaultSettleDelay,
		cycleLimit:  30 * time.Second,
		logger:      logger,
		after:       time.After,
		now:         time.Now,
		stats:       sigerrors.NewErrorStats(50),
	}
}

// WithSettleDelay changes the delay after each candle close
func (r *Runner) WithSettleDelay(d time.Duration) *Runner {
	r.settle = d
	return r
}

// WithCycleTimeout bounds each UpdateProcessedData call
func (r *Runner) WithCycleTimeout(d time.Duration) *Runner {
	r.cycleLimit = d
	return r
}

// Run evaluates every controller once immediately and then after every
// candle close until ctx is done. Failed cycles are retried on the next
// close, except configuration errors which stop the whole runner.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range r.controllers {
		g.Go(func() error {
			return r.loop(ctx, c)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Runner) loop(ctx context.Context, c *DirectionalController) error {
	d, err := IntervalDuration(c.cfg.Interval())
	if err != nil {
		return err
	}
	r.logger.Info().Str("controller", c.ID()).Dur("interval", d).Msg("Controller started")

	for {
		if err := r.cycle(ctx, c); err != nil {
			if r.record(c.ID(), err) == sigerrors.ErrorCategoryConfiguration {
				return err
			}
		}

		wait := UntilNextClose(r.now(), d) + r.settle
		select {
		case <-ctx.Done():
			r.logger.Info().Str("controller", c.ID()).Msg("Controller stopped")
			return ctx.Err()
		case <-r.after(wait):
		}
	}
}

func (r *Runner) cycle(ctx context.Context, c *DirectionalController) error {
	cycleCtx, cancel := context.WithTimeout(ctx, r.cycleLimit)
	defer cancel()
	return c.UpdateProcessedData(cycleCtx)
}

// record adds a failed cycle to the error statistics and returns its category
func (r *Runner) record(controller string, err error) sigerrors.ErrorCategory {
	sigErr := sigerrors.CategorizeError(err, "runner", "cycle")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.RecordError(sigErr)
	if r.stats.HasRecentErrors(sigErr.Category, repeatedFailures) {
		r.logger.Warn().
			Str("controller", controller).
			Str("category", string(sigErr.Category)).
			Int("total_errors", r.stats.TotalErrors).
			Msg("⚠️ Repeated cycle failures")
	}
	return sigErr.Category
}

// ErrorCount returns how many failed cycles of category the runner has seen
func (r *Runner) ErrorCount(category sigerrors.ErrorCategory) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats.ErrorsByCategory[category]
}
