package indexer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/tensor-horizon/evidence-exchange/internal/metrics"
)

// Throttle bounds how many indexing calls run at once and paces each
// slot with a delay before and after the call. The indexing service
// degrades badly under burst load, so slots are acquired up front and
// the post delay runs even when the call fails.
type Throttle struct {
	sem       *semaphore.Weighted
	preDelay  time.Duration
	postDelay time.Duration
	logger    *zap.Logger
}

// NewThrottle creates a throttle with maxInFlight slots.
func NewThrottle(maxInFlight int64, preDelay, postDelay time.Duration, opts ...Option) *Throttle {
	s := applyOptions(opts)
	return &Throttle{
		sem:       semaphore.NewWeighted(maxInFlight),
		preDelay:  preDelay,
		postDelay: postDelay,
		logger:    s.logger,
	}
}

// Do runs fn inside a slot. Waiting for a slot and both pacing delays
// honor ctx cancellation.
func (t *Throttle) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer t.sem.Release(1)

	if err := sleepContext(ctx, t.preDelay); err != nil {
		return err
	}

	metrics.IndexerInFlight.Inc()
	err := fn(ctx)
	metrics.IndexerInFlight.Dec()
	if err != nil {
		t.logger.Warn("Throttled call failed", zap.Error(err))
	}

	if sleepErr := sleepContext(ctx, t.postDelay); sleepErr != nil && err == nil {
		err = sleepErr
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
