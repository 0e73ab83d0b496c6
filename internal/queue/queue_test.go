package queue

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ContentDigest/internal/domain"
)

func newTestQueue(t *testing.T) (*Queue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.json")
	q, err := New(path, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return q, path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnqueueAndNext(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)
	if err := q.Enqueue(domain.Job{URL: "https://a.example/one"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := q.Enqueue(domain.Job{URL: "https://a.example/two"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}

	job, ok := q.Next()
	if !ok {
		t.Fatal("Next() ok = false, want a job")
	}
	if job.URL != "https://a.example/one" {
		t.Errorf("Next() URL = %q, want FIFO order", job.URL)
	}
	if job.Status != domain.JobProcessing {
		t.Errorf("Status = %q, want processing", job.Status)
	}
	if job.ID == "" {
		t.Error("ID is empty, want a generated one")
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d after claiming, want 1", q.Len())
	}
}

func TestEnqueueDeduplicatesActiveURLs(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)
	if err := q.Enqueue(domain.Job{URL: "https://a.example/post"}); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(domain.Job{URL: "https://a.example/post"}); err != nil {
		t.Fatal(err)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want the duplicate dropped", q.Len())
	}
}

func TestCompleteRemovesJob(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)
	if err := q.Enqueue(domain.Job{URL: "https://a.example/post"}); err != nil {
		t.Fatal(err)
	}
	job, _ := q.Next()
	if err := q.Complete(job.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if _, ok := q.Next(); ok {
		t.Error("Next() found a job after Complete()")
	}
}

func TestFailRequeuesUntilRetriesExhausted(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)
	if err := q.Enqueue(domain.Job{URL: "https://a.example/post"}); err != nil {
		t.Fatal(err)
	}

	job, _ := q.Next()
	if err := q.Fail(job.ID, "fetch timeout", 2, 0); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	requeued, ok := q.Next()
	if !ok {
		t.Fatal("Next() ok = false, want the requeued job")
	}
	if requeued.Retries != 1 {
		t.Errorf("Retries = %d, want 1", requeued.Retries)
	}
	if requeued.LastError != "fetch timeout" {
		t.Errorf("LastError = %q", requeued.LastError)
	}

	if err := q.Fail(requeued.ID, "fetch timeout again", 2, 0); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if _, ok := q.Next(); ok {
		t.Error("Next() returned a permanently failed job")
	}
}

func TestFailDefersRetryByBackoff(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)
	if err := q.Enqueue(domain.Job{URL: "https://a.example/post"}); err != nil {
		t.Fatal(err)
	}
	// Drain the enqueue signal so the backoff wake-up is observable.
	<-q.Notify()

	job, _ := q.Next()
	if err := q.Fail(job.ID, "rate limited", 3, 50*time.Millisecond); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	if _, ok := q.Next(); ok {
		t.Fatal("Next() returned a job still inside its backoff window")
	}

	select {
	case <-q.Notify():
	case <-time.After(5 * time.Second):
		t.Fatal("no wake-up signal after the backoff elapsed")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if requeued, ok := q.Next(); ok {
			if requeued.Retries != 1 {
				t.Errorf("Retries = %d, want 1", requeued.Retries)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("deferred job never became claimable")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestQueueSurvivesReopen(t *testing.T) {
	t.Parallel()

	q, path := newTestQueue(t)
	if err := q.Enqueue(domain.Job{URL: "https://a.example/kept"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := q.Next(); !ok {
		t.Fatal("Next() ok = false")
	}

	reopened, err := New(path, discardLogger())
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	job, ok := reopened.Next()
	if !ok {
		t.Fatal("reopened queue lost the interrupted job")
	}
	if job.URL != "https://a.example/kept" {
		t.Errorf("URL = %q", job.URL)
	}
}

func TestRequeueStale(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)
	if err := q.Enqueue(domain.Job{URL: "https://a.example/slow"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := q.Next(); !ok {
		t.Fatal("Next() ok = false")
	}

	if n := q.RequeueStale(time.Hour); n != 0 {
		t.Errorf("RequeueStale(1h) = %d, want 0 for a fresh claim", n)
	}
	if n := q.RequeueStale(0); n != 1 {
		t.Errorf("RequeueStale(0) = %d, want 1", n)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want the job back in pending", q.Len())
	}
}

func TestNotifySignalsOnEnqueue(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t)
	if err := q.Enqueue(domain.Job{URL: "https://a.example/post"}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-q.Notify():
	case <-time.After(time.Second):
		t.Fatal("Notify() did not signal after Enqueue()")
	}
}

func TestNewToleratesMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "queue.json")
	q, err := New(path, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
}
