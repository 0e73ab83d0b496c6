package usecase

import (
	"context"
	"time"

	"ContentDigest/internal/monitoring"
	"ContentDigest/internal/ports"
	"ContentDigest/internal/queue"
)

// Sweeper wires the periodic driver to queue maintenance: stale processing
// jobs go back to pending and the depth gauge is refreshed.
type Sweeper struct {
	driver     ports.Scheduler
	queue      *queue.Queue
	metrics    *monitoring.Metrics
	staleAfter time.Duration
}

// NewSweeper returns a helper to start/stop recurring queue maintenance.
// Non-positive staleAfter defaults to 30 minutes.
func NewSweeper(driver ports.Scheduler, q *queue.Queue, m *monitoring.Metrics, staleAfter time.Duration) *Sweeper {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &Sweeper{driver: driver, queue: q, metrics: m, staleAfter: staleAfter}
}

// Start registers the sweep with the provided scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.driver == nil || s.queue == nil {
		return nil
	}

	job := func(time.Time) {
		s.queue.RequeueStale(s.staleAfter)
		s.metrics.QueueDepthObserved(s.queue.Len())
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
