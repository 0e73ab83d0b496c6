package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"ContentDigest/internal/config"
	"ContentDigest/internal/detector"
	"ContentDigest/internal/infrastructure/cache"
	"ContentDigest/internal/infrastructure/captions"
	"ContentDigest/internal/infrastructure/extract"
	"ContentDigest/internal/infrastructure/fetch"
	"ContentDigest/internal/infrastructure/llm"
	"ContentDigest/internal/infrastructure/scheduler"
	"ContentDigest/internal/infrastructure/storage"
	"ContentDigest/internal/infrastructure/stt"
	"ContentDigest/internal/infrastructure/telegram"
	"ContentDigest/internal/logging"
	"ContentDigest/internal/monitoring"
	"ContentDigest/internal/ports"
	"ContentDigest/internal/queue"
	"ContentDigest/internal/transcript"
	"ContentDigest/internal/usecase"
	"ContentDigest/internal/watcher"
	"ContentDigest/pkg/logger"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	db      *sql.DB
	repo    *storage.PostgresRepository
	cache   *cache.RedisCache
	jobs    *queue.Queue
	inbox   *watcher.Watcher
	worker  *usecase.Worker
	sweeper *usecase.Sweeper
}

// New builds the full application from configuration. Optional pieces
// (browser fallback, Redis, speech-to-text, Telegram) stay unwired when their
// config is absent.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	fetchContext, err := fetch.NewContext(cfg.Fetch.UserAgent, cfg.Fetch.CookieFile, cfg.Fetch.Headers)
	if err != nil {
		return nil, fmt.Errorf("fetch context: %w", err)
	}

	httpFetcher := fetch.NewHTTPFetcher(
		&http.Client{Timeout: cfg.Fetch.ClientTimeout()},
		cfg.Fetch.RatePerSecond,
	)
	var browser ports.DocumentFetcher
	if cfg.Fetch.Browser.Enabled {
		browser = fetch.NewBrowserFetcher(
			!cfg.Fetch.Browser.Headful,
			cfg.Fetch.Browser.NavigationTimeout(),
			logger.New("browser").Printf,
		)
	}
	fetcher := metrics.Fetcher(fetch.NewFallbackFetcher(httpFetcher, browser, baseLogger))

	classifier := detector.New(detector.Config{
		Fetcher:      fetcher,
		FetchContext: fetchContext,
		OnVerdict:    metrics.VerdictObserved,
		Logger:       baseLogger,
	})

	var classificationCache ports.ClassificationCache
	var redisCache *cache.RedisCache
	if cfg.Cache.Addr != "" {
		redisCache, err = cache.NewRedisCache(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.EntryTTL())
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		classificationCache = redisCache
	}

	registry := transcript.NewRegistry()
	registry.Register(captions.NewYouTubeSource(fetcher, fetchContext, 0, baseLogger))
	if cfg.STT.APIKey != "" {
		sttClient := stt.NewClient(cfg.STT.Endpoint, cfg.STT.APIKey, cfg.STT.Model)
		registry.Register(stt.NewMediaFileSource(sttClient, fetchContext, baseLogger))
	}
	transcripts := transcript.NewProvider(registry, baseLogger)

	summarizer, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repo := storage.NewPostgresRepository(db)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	jobs, err := queue.New(cfg.Inbox.QueueFile, baseLogger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open queue: %w", err)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:      fetcher,
		FetchContext: fetchContext,
		Classifier:   classifier,
		Cache:        classificationCache,
		Transcripts:  transcripts,
		Extractor:    extract.NewReadabilityExtractor(),
		Summarizer:   summarizer,
		Repository:   repo,
		Notifier:     notifier,
		Metrics:      metrics,
		Logger:       baseLogger,
	})

	return &Application{
		cfg:    cfg,
		logger: baseLogger.With("component", "app"),
		db:     db,
		repo:   repo,
		cache:  redisCache,
		jobs:   jobs,
		inbox:  watcher.New(cfg.Inbox.Dir, jobs, baseLogger),
		worker: usecase.NewWorker(jobs, pipeline, cfg.Queue.MaxRetries, cfg.Queue.PerJobTimeout(), baseLogger),
		sweeper: usecase.NewSweeper(
			scheduler.NewTickerScheduler(cfg.Queue.SweepInterval()),
			jobs, metrics, cfg.Queue.StaleCutoff(),
		),
	}, nil
}

// Run watches the inbox and processes jobs until ctx is canceled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	if addr := a.cfg.Monitoring.Addr; addr != "" {
		go func() {
			if err := monitoring.Serve(ctx, addr); err != nil {
				a.logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer a.sweeper.Stop(context.Background())

	a.logger.Info("watching inbox",
		"dir", a.cfg.Inbox.Dir, "queue", a.cfg.Inbox.QueueFile, "provider", a.cfg.LLM.Provider)

	errCh := make(chan error, 2)
	go func() { errCh <- a.inbox.Run(ctx) }()
	go func() { errCh <- a.worker.Run(ctx) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases database and cache connections.
func (a *Application) Close() error {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("close cache", "error", err)
		}
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
