package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/queue"
)

// defaultDebounce absorbs the burst of events editors fire per save.
const defaultDebounce = 200 * time.Millisecond

// Watcher turns .url files dropped into the inbox directory into queue jobs.
type Watcher struct {
	dir      string
	queue    *queue.Queue
	debounce time.Duration
	logger   *slog.Logger
}

// New wires the inbox directory to the job queue.
func New(dir string, q *queue.Queue, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		queue:    q,
		debounce: defaultDebounce,
		logger:   logger.With("component", "watcher"),
	}
}

// Run watches the inbox until ctx is canceled. Files already present at
// startup are swept first.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.sweep()

	var mu sync.Mutex
	pending := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, timer := range pending {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".url") {
				continue
			}
			name := event.Name
			mu.Lock()
			if timer, exists := pending[name]; exists {
				timer.Stop()
			}
			pending[name] = time.AfterFunc(w.debounce, func() {
				mu.Lock()
				delete(pending, name)
				mu.Unlock()
				w.ingest(name)
			})
			mu.Unlock()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// sweep enqueues inbox files that arrived while the process was down.
func (w *Watcher) sweep() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("sweep inbox failed", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".url") {
			continue
		}
		w.ingest(filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) ingest(path string) {
	job, err := ParseJobFile(path)
	if err != nil {
		w.logger.Warn("skip inbox file", "file", path, "error", err)
		return
	}
	if err := w.queue.Enqueue(job); err != nil {
		w.logger.Error("enqueue failed", "file", path, "error", err)
		return
	}
	w.logger.Debug("inbox file ingested", "file", path, "url", job.URL)
}

// ParseJobFile reads an inbox file: the page URL on its own line, optionally
// with prompt: lines that override the summary prompt. Windows internet
// shortcuts (URL= lines under a section header) are accepted too.
func ParseJobFile(path string) (domain.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Job{}, fmt.Errorf("read inbox file: %w", err)
	}

	var pageURL string
	var promptLines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "prompt:"); ok {
			promptLines = append(promptLines, strings.TrimSpace(rest))
			continue
		}
		if rest, ok := strings.CutPrefix(line, "URL="); ok {
			line = strings.TrimSpace(rest)
		}
		if pageURL == "" {
			pageURL = line
		}
	}

	if pageURL == "" {
		return domain.Job{}, fmt.Errorf("no url in %s", path)
	}
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return domain.Job{}, fmt.Errorf("invalid url %q in %s", pageURL, path)
	}

	return domain.Job{
		SourceFile:   filepath.Base(path),
		URL:          pageURL,
		CustomPrompt: strings.Join(promptLines, "\n"),
	}, nil
}
