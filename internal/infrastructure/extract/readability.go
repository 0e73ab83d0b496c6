package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

// ReadabilityExtractor pulls the readable article text out of a page.
type ReadabilityExtractor struct{}

var _ ports.TextExtractor = (*ReadabilityExtractor)(nil)

// NewReadabilityExtractor builds the extractor.
func NewReadabilityExtractor() *ReadabilityExtractor {
	return &ReadabilityExtractor{}
}

// Extract parses the page and returns article metadata with its plain text.
func (e *ReadabilityExtractor) Extract(ctx context.Context, html, pageURL string) (domain.Article, string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return domain.Article{}, "", fmt.Errorf("parse page url: %w", err)
	}

	art, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return domain.Article{}, "", fmt.Errorf("extract readable content: %w", err)
	}

	article := domain.Article{
		URL:       pageURL,
		Title:     strings.TrimSpace(art.Title),
		SiteName:  strings.TrimSpace(art.SiteName),
		FetchedAt: time.Now(),
	}
	if art.PublishedTime != nil {
		article.PublishedAt = *art.PublishedTime
	}

	text := strings.TrimSpace(art.TextContent)
	if text == "" {
		return article, "", fmt.Errorf("page has no readable text")
	}
	return article, text, nil
}
