package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"ContentDigest/internal/domain"
)

// Queue persists jobs as a JSON file so restarts resume unfinished work.
// Every mutation is written through to disk before it is visible.
type Queue struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	jobs   []domain.Job
	notify chan struct{}
}

// New opens the queue file at path, creating parent directories as needed.
// Jobs left in processing state by a crash are reset to pending.
func New(path string, logger *slog.Logger) (*Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		path:   path,
		logger: logger.With("component", "queue"),
		notify: make(chan struct{}, 1),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return q, nil
		}
		return nil, fmt.Errorf("read queue file: %w", err)
	}
	if len(data) == 0 {
		return q, nil
	}
	if err := json.Unmarshal(data, &q.jobs); err != nil {
		return nil, fmt.Errorf("parse queue file %s: %w", path, err)
	}

	reset := 0
	for i := range q.jobs {
		if q.jobs[i].Status == domain.JobProcessing {
			q.jobs[i].Status = domain.JobPending
			q.jobs[i].UpdatedAt = time.Now()
			reset++
		}
	}
	if reset > 0 {
		q.logger.Info("reset interrupted jobs", "count", reset)
		if err := q.persist(); err != nil {
			return nil, err
		}
	}
	if q.pendingLocked() > 0 {
		q.signal()
	}
	return q, nil
}

// Notify signals whenever new work may be available.
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

// Enqueue adds a job unless its URL is already pending or processing. A blank
// ID gets a timestamp-based one.
func (q *Queue) Enqueue(job domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, existing := range q.jobs {
		if existing.URL == job.URL &&
			(existing.Status == domain.JobPending || existing.Status == domain.JobProcessing) {
			q.logger.Debug("job already queued", "url", job.URL)
			return nil
		}
	}

	now := time.Now()
	if job.ID == "" {
		job.ID = strconv.FormatInt(now.UnixNano(), 10)
	}
	job.Status = domain.JobPending
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = now
	}
	job.UpdatedAt = now

	q.jobs = append(q.jobs, job)
	if err := q.persist(); err != nil {
		q.jobs = q.jobs[:len(q.jobs)-1]
		return err
	}
	q.logger.Info("job enqueued", "id", job.ID, "url", job.URL)
	q.signal()
	return nil
}

// Next claims the oldest runnable pending job, marking it processing. Jobs
// deferred by a retry backoff are skipped until their time comes.
func (q *Queue) Next() (domain.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for i := range q.jobs {
		if q.jobs[i].Status != domain.JobPending {
			continue
		}
		if q.jobs[i].NotBefore.After(now) {
			continue
		}
		q.jobs[i].Status = domain.JobProcessing
		q.jobs[i].UpdatedAt = time.Now()
		if err := q.persist(); err != nil {
			q.jobs[i].Status = domain.JobPending
			q.logger.Error("persist claim failed", "id", q.jobs[i].ID, "error", err)
			return domain.Job{}, false
		}
		return q.jobs[i], true
	}
	return domain.Job{}, false
}

// Complete removes the job from the queue.
func (q *Queue) Complete(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.jobs {
		if q.jobs[i].ID != id {
			continue
		}
		q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
		return q.persist()
	}
	return fmt.Errorf("job %s is not queued", id)
}

// Fail records the error and either requeues the job or, once maxRetries
// attempts are spent, parks it as failed. A requeued job waits retries*backoff
// before it becomes claimable again; the wake-up signal is scheduled to match.
func (q *Queue) Fail(id, errMsg string, maxRetries int, backoff time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.jobs {
		if q.jobs[i].ID != id {
			continue
		}
		q.jobs[i].Retries++
		q.jobs[i].LastError = errMsg
		q.jobs[i].UpdatedAt = time.Now()
		if q.jobs[i].Retries >= maxRetries {
			q.jobs[i].Status = domain.JobFailed
			q.logger.Warn("job failed permanently", "id", id, "retries", q.jobs[i].Retries, "error", errMsg)
		} else {
			delay := time.Duration(q.jobs[i].Retries) * backoff
			q.jobs[i].Status = domain.JobPending
			q.jobs[i].NotBefore = time.Now().Add(delay)
			q.logger.Info("job requeued",
				"id", id, "retries", q.jobs[i].Retries, "delay", delay, "error", errMsg)
			if delay > 0 {
				time.AfterFunc(delay, q.signal)
			} else {
				q.signal()
			}
		}
		return q.persist()
	}
	return fmt.Errorf("job %s is not queued", id)
}

// RequeueStale returns processing jobs older than olderThan to pending and
// reports how many it touched.
func (q *Queue) RequeueStale(olderThan time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	touched := 0
	for i := range q.jobs {
		if q.jobs[i].Status == domain.JobProcessing && q.jobs[i].UpdatedAt.Before(cutoff) {
			q.jobs[i].Status = domain.JobPending
			q.jobs[i].UpdatedAt = time.Now()
			touched++
		}
	}
	if touched > 0 {
		q.logger.Info("requeued stale jobs", "count", touched)
		if err := q.persist(); err != nil {
			q.logger.Error("persist requeue failed", "error", err)
		}
		q.signal()
	}
	return touched
}

// Len reports the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pendingLocked()
}

func (q *Queue) pendingLocked() int {
	n := 0
	for _, job := range q.jobs {
		if job.Status == domain.JobPending {
			n++
		}
	}
	return n
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// persist writes the queue atomically: temp file then rename.
func (q *Queue) persist() error {
	data, err := json.MarshalIndent(q.jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}
	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write queue file: %w", err)
	}
	if err := os.Rename(tmp, q.path); err != nil {
		return fmt.Errorf("replace queue file: %w", err)
	}
	return nil
}
