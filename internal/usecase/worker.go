package usecase

import (
	"context"
	"log/slog"
	"time"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/queue"
)

type jobRunner interface {
	ProcessJob(ctx context.Context, job domain.Job) error
}

// retryBackoff is the per-retry delay base; the wait before attempt n is
// n * retryBackoff.
const retryBackoff = 5 * time.Second

// Worker drains the job queue, one job at a time, waking on queue signals.
type Worker struct {
	queue      *queue.Queue
	pipeline   jobRunner
	maxRetries int
	jobTimeout time.Duration
	backoff    time.Duration
	logger     *slog.Logger
}

// NewWorker wires the queue to the pipeline. Non-positive maxRetries defaults
// to 3, non-positive jobTimeout to 15 minutes.
func NewWorker(q *queue.Queue, p *Pipeline, maxRetries int, jobTimeout time.Duration, logger *slog.Logger) *Worker {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if jobTimeout <= 0 {
		jobTimeout = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{
		queue:      q,
		maxRetries: maxRetries,
		jobTimeout: jobTimeout,
		backoff:    retryBackoff,
		logger:     logger.With("component", "worker"),
	}
	if p != nil {
		w.pipeline = p
	}
	return w
}

// Run processes jobs until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if w.queue == nil || w.pipeline == nil {
		return nil
	}
	for {
		w.drain(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-w.queue.Notify():
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, ok := w.queue.Next()
		if !ok {
			return
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job domain.Job) {
	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	start := time.Now()
	if err := w.pipeline.ProcessJob(jobCtx, job); err != nil {
		w.logger.Error("job failed", "id", job.ID, "url", job.URL, "error", err)
		if qErr := w.queue.Fail(job.ID, err.Error(), w.maxRetries, w.backoff); qErr != nil {
			w.logger.Error("record failure", "id", job.ID, "error", qErr)
		}
		return
	}

	w.logger.Info("job completed",
		"id", job.ID, "url", job.URL, "took", time.Since(start).Round(time.Millisecond))
	if qErr := w.queue.Complete(job.ID); qErr != nil {
		w.logger.Error("record completion", "id", job.ID, "error", qErr)
	}
}
