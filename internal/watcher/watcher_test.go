package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ContentDigest/internal/queue"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestQueue(t *testing.T) *queue.Queue {
	t.Helper()
	q, err := queue.New(filepath.Join(t.TempDir(), "queue.json"), discardLogger())
	if err != nil {
		t.Fatalf("queue.New() error = %v", err)
	}
	return q
}

func waitForJobs(t *testing.T, q *queue.Queue, want int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for q.Len() < want {
		select {
		case <-deadline:
			t.Fatalf("queue has %d jobs, want %d", q.Len(), want)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestParseJobFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "article.url")
	content := "# saved from the browser\nprompt: focus on the benchmarks\nhttps://a.example/post\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	job, err := ParseJobFile(path)
	if err != nil {
		t.Fatalf("ParseJobFile() error = %v", err)
	}
	if job.URL != "https://a.example/post" {
		t.Errorf("URL = %q", job.URL)
	}
	if job.CustomPrompt != "focus on the benchmarks" {
		t.Errorf("CustomPrompt = %q", job.CustomPrompt)
	}
	if job.SourceFile != "article.url" {
		t.Errorf("SourceFile = %q", job.SourceFile)
	}
}

func TestParseJobFileWindowsShortcut(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "link.url")
	content := "[InternetShortcut]\r\nURL=https://a.example/talk\r\nIconIndex=0\r\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	job, err := ParseJobFile(path)
	if err != nil {
		t.Fatalf("ParseJobFile() error = %v", err)
	}
	if job.URL != "https://a.example/talk" {
		t.Errorf("URL = %q", job.URL)
	}
}

func TestParseJobFileRejectsJunk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := map[string]string{
		"empty.url":  "",
		"scheme.url": "ftp://a.example/file\n",
		"noturl.url": "just some words\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := ParseJobFile(path); err == nil {
			t.Errorf("ParseJobFile(%s) error = nil, want error", name)
		}
	}
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	q := newTestQueue(t)
	w := New(dir, q, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to install before writing.
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(dir, "fresh.url")
	if err := os.WriteFile(path, []byte("https://a.example/fresh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitForJobs(t, q, 1)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestWatcherSweepsExistingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.url"), []byte("https://a.example/old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	q := newTestQueue(t)
	w := New(dir, q, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitForJobs(t, q, 1)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("https://a.example/hm\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	q := newTestQueue(t)
	w := New(dir, q, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for a non-.url file", q.Len())
	}
}
