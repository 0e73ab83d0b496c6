package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

// Config wires the engine's two external needs plus tunables. The fetcher and
// fetch context feed validation and embed-proxy fetches; the classifier never
// fetches the article page itself. OnVerdict, when set, observes every link
// validation outcome.
type Config struct {
	Fetcher      ports.DocumentFetcher
	FetchContext *domain.FetchContext
	FetchTimeout time.Duration
	OnVerdict    func(domain.ValidationVerdict)
	Logger       *slog.Logger
}

type videoResolving interface {
	resolve(ctx context.Context, doc *goquery.Document, articleURL string) (domain.MediaCandidate, bool)
}

type audioResolving interface {
	resolve(doc *goquery.Document) []domain.MediaCandidate
}

// Classifier decides what kind of content a page carries. It implements
// ports.Classifier.
type Classifier struct {
	video  videoResolving
	audio  audioResolving
	logger *slog.Logger
}

// New builds the detection engine.
func New(cfg Config) *Classifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "detector")

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Classifier{
		video: &videoResolver{
			fetcher:      cfg.Fetcher,
			fetchContext: cfg.FetchContext,
			validator:    newVideoValidator(cfg.Fetcher, cfg.FetchContext, timeout, cfg.OnVerdict, logger),
			fetchTimeout: timeout,
			logger:       logger,
		},
		audio:  &audioResolver{logger: logger},
		logger: logger,
	}
}

// Classify applies the decision ladder in fixed order: the article URL
// itself, then embedded video, then audio, then text-only. A video result
// suppresses the audio scan entirely. Malformed documents and collaborator
// failures degrade toward text-only; Classify never fails.
func (c *Classifier) Classify(ctx context.Context, doc *goquery.Document, articleURL string) domain.ContentClassification {
	if cand, ok := directFileCandidate(articleURL, domain.DiscoveryDirectFile); ok {
		c.logger.Debug("article url is a media file", "url", articleURL, "kind", cand.Kind)
		if cand.Kind == domain.MediaVideo {
			return domain.NewVideoClassification(cand)
		}
		return domain.NewAudioClassification([]domain.MediaCandidate{cand})
	}

	if cand, ok := matchVideoURL(articleURL, domain.DiscoveryDirectURL); ok {
		c.logger.Debug("article url is a platform video", "platform", cand.Platform, "id", cand.ID)
		return domain.NewVideoClassification(cand)
	}

	if cand, ok := c.video.resolve(ctx, doc, articleURL); ok {
		c.logger.Info("classified as video",
			"url", articleURL, "platform", cand.Platform, "id", cand.ID, "discovery", cand.Discovery)
		return domain.NewVideoClassification(cand)
	}

	if sources := c.audio.resolve(doc); len(sources) > 0 {
		c.logger.Info("classified as audio",
			"url", articleURL, "count", len(sources), "platform", sources[0].Platform)
		return domain.NewAudioClassification(sources)
	}

	c.logger.Debug("no media found, text only", "url", articleURL)
	return domain.NewTextClassification()
}
