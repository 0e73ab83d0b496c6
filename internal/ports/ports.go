package ports

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentDigest/internal/domain"
)

// DocumentFetcher retrieves raw page HTML. Non-2xx responses come back as
// results, not errors; an error means the transport itself failed.
type DocumentFetcher interface {
	Fetch(ctx context.Context, fc *domain.FetchContext, url string) (domain.FetchResult, error)
}

// Classifier decides whether a fetched page is video, audio or text-only.
type Classifier interface {
	Classify(ctx context.Context, doc *goquery.Document, articleURL string) domain.ContentClassification
}

// TranscriptProvider recovers spoken-word text for a media candidate.
type TranscriptProvider interface {
	Transcribe(ctx context.Context, candidate domain.MediaCandidate) (domain.Transcript, error)
}

// TextExtractor pulls readable article text out of raw page HTML.
type TextExtractor interface {
	Extract(ctx context.Context, html, pageURL string) (domain.Article, string, error)
}

// Summarizer generates final summaries from assembled prompts.
type Summarizer interface {
	Provider() string
	Summarize(ctx context.Context, prompt string) (string, error)
}

// SummaryRepository persists completed summaries for deduplication/history.
type SummaryRepository interface {
	AlreadyProcessed(ctx context.Context, urls []string) (map[string]bool, error)
	SaveSummary(ctx context.Context, record domain.SummaryRecord) error
}

// ClassificationCache memoizes classifications between runs. Implementations
// return (nil, nil) on a miss.
type ClassificationCache interface {
	Get(ctx context.Context, url string) (*domain.ContentClassification, error)
	Set(ctx context.Context, url string, c domain.ContentClassification) error
}

// Notifier streams finished digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls periodic maintenance (queue sweeps, retry pickup).
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
