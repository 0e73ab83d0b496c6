package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/monitoring"
	"ContentDigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the summarization pipeline.
type PipelineDeps struct {
	Fetcher      ports.DocumentFetcher
	FetchContext *domain.FetchContext
	Classifier   ports.Classifier
	Cache        ports.ClassificationCache
	Transcripts  ports.TranscriptProvider
	Extractor    ports.TextExtractor
	Summarizer   ports.Summarizer
	Repository   ports.SummaryRepository
	Notifier     ports.Notifier
	Metrics      *monitoring.Metrics
	Logger       *slog.Logger
}

// Pipeline implements the fetch, classify, transcribe, summarize workflow for
// one queued page.
type Pipeline struct {
	fetcher      ports.DocumentFetcher
	fetchContext *domain.FetchContext
	classifier   ports.Classifier
	cache        ports.ClassificationCache
	transcripts  ports.TranscriptProvider
	extractor    ports.TextExtractor
	summarizer   ports.Summarizer
	repository   ports.SummaryRepository
	notifier     ports.Notifier
	metrics      *monitoring.Metrics
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher:      deps.Fetcher,
		fetchContext: deps.FetchContext,
		classifier:   deps.Classifier,
		cache:        deps.Cache,
		transcripts:  deps.Transcripts,
		extractor:    deps.Extractor,
		summarizer:   deps.Summarizer,
		repository:   deps.Repository,
		notifier:     deps.Notifier,
		metrics:      deps.Metrics,
		logger:       logger.With("component", "pipeline"),
	}
}

// ProcessJob runs one inbox job end to end: dedup, fetch, classify, pick the
// content to summarize, summarize, persist and deliver.
func (p *Pipeline) ProcessJob(ctx context.Context, job domain.Job) error {
	if p.fetcher == nil || p.summarizer == nil {
		return fmt.Errorf("pipeline is not fully wired")
	}

	start := time.Now()
	defer func() { p.metrics.JobObserved(time.Since(start)) }()

	if p.repository != nil {
		processed, err := p.repository.AlreadyProcessed(ctx, []string{job.URL})
		if err != nil {
			return fmt.Errorf("load processed: %w", err)
		}
		if processed[job.URL] {
			p.logger.Info("page already summarized", "url", job.URL)
			return nil
		}
	}

	res, err := p.fetcher.Fetch(ctx, p.fetchContext, job.URL)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}
	if !res.OK() {
		return fmt.Errorf("page %s returned status %d", job.URL, res.StatusCode)
	}
	pageURL := res.FinalURL
	if pageURL == "" {
		pageURL = job.URL
	}

	classification := p.classify(ctx, pageURL, res.Body)
	p.metrics.ClassificationObserved(classification.Kind)

	article, text := p.extract(ctx, res.Body, pageURL)

	content, transcriptSource, err := p.content(ctx, classification, article, text)
	if err != nil {
		return err
	}

	prompt := buildPrompt(classification.Kind, article, content, job.CustomPrompt)
	summary, err := p.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", job.URL, err)
	}

	record := domain.SummaryRecord{
		Article:          article,
		ContentKind:      classification.Kind,
		TranscriptSource: transcriptSource,
		Summary:          summary,
		Provider:         p.summarizer.Provider(),
		Status:           domain.StatusSummarized,
	}
	if candidate, ok := classification.PrimaryCandidate(); ok {
		record.Platform = candidate.Platform
		record.MediaID = candidate.ID
	}

	if p.repository != nil {
		if err := p.repository.SaveSummary(ctx, record); err != nil {
			return fmt.Errorf("persist summary: %w", err)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, formatDigest(record)); err != nil {
			p.logger.Warn("digest delivery failed", "url", job.URL, "error", err)
		} else {
			record.Status = domain.StatusDelivered
			if p.repository != nil {
				if err := p.repository.SaveSummary(ctx, record); err != nil {
					p.logger.Warn("status update failed", "url", job.URL, "error", err)
				}
			}
		}
	}

	p.metrics.SummaryObserved(record.Provider, record.Status)
	p.logger.Info("page summarized",
		"url", job.URL, "kind", classification.Kind, "provider", record.Provider)
	return nil
}

// classify consults the cache, runs the detection engine and stores the
// result. Cache problems never fail the job.
func (p *Pipeline) classify(ctx context.Context, pageURL, body string) domain.ContentClassification {
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, pageURL); err != nil {
			p.logger.Warn("classification cache read failed", "url", pageURL, "error", err)
		} else if cached != nil {
			p.logger.Debug("classification cache hit", "url", pageURL, "kind", cached.Kind)
			return *cached
		}
	}

	var doc *goquery.Document
	if parsed, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err != nil {
		p.logger.Warn("parse page failed", "url", pageURL, "error", err)
	} else {
		doc = parsed
	}

	classification := domain.NewTextClassification()
	if p.classifier != nil {
		classification = p.classifier.Classify(ctx, doc, pageURL)
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, pageURL, classification); err != nil {
			p.logger.Warn("classification cache write failed", "url", pageURL, "error", err)
		}
	}
	return classification
}

// extract recovers article metadata and readable text. Extraction failures
// degrade to bare metadata.
func (p *Pipeline) extract(ctx context.Context, body, pageURL string) (domain.Article, string) {
	fallback := domain.Article{URL: pageURL, FetchedAt: time.Now()}
	if p.extractor == nil {
		return fallback, ""
	}
	article, text, err := p.extractor.Extract(ctx, body, pageURL)
	if err != nil {
		p.logger.Debug("text extraction failed", "url", pageURL, "error", err)
		if article.URL != "" {
			return article, ""
		}
		return fallback, ""
	}
	return article, text
}

// content picks what gets summarized: the transcript for media pages, the
// readable text for articles. Media pages fall back to the page text when no
// transcript source succeeds.
func (p *Pipeline) content(ctx context.Context, classification domain.ContentClassification, article domain.Article, text string) (string, string, error) {
	candidate, ok := classification.PrimaryCandidate()
	if !ok {
		if strings.TrimSpace(text) == "" {
			return "", "", fmt.Errorf("page %s has no readable text", article.URL)
		}
		return text, "", nil
	}

	if p.transcripts != nil {
		tr, err := p.transcripts.Transcribe(ctx, candidate)
		if err == nil {
			return renderTranscript(tr), tr.Source, nil
		}
		p.logger.Warn("transcript unavailable",
			"url", candidate.CanonicalURL, "platform", candidate.Platform, "error", err)
	}

	if strings.TrimSpace(text) != "" {
		p.logger.Info("summarizing page text instead of media", "url", article.URL)
		return text, "", nil
	}
	return "", "", fmt.Errorf("no transcript and no readable text for %s", article.URL)
}
