package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

// challengeBodyLimit bounds the marker scan; real interstitials are tiny.
const challengeBodyLimit = 20000

// challengeMarkers betray bot walls that only a real browser clears.
var challengeMarkers = []string{
	"just a moment",
	"cf-browser-verification",
	"attention required",
	"enable javascript and cookies to continue",
}

// FallbackFetcher tries plain HTTP first and reaches for the browser when the
// response looks like a bot wall.
type FallbackFetcher struct {
	primary ports.DocumentFetcher
	browser ports.DocumentFetcher
	logger  *slog.Logger
}

// NewFallbackFetcher chains primary and browser fetchers; browser may be nil,
// in which case the primary result is final.
func NewFallbackFetcher(primary, browser ports.DocumentFetcher, logger *slog.Logger) *FallbackFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackFetcher{primary: primary, browser: browser, logger: logger.With("component", "fetch")}
}

// Fetch returns the primary result unless it was blocked and a browser is
// available to retry with.
func (f *FallbackFetcher) Fetch(ctx context.Context, fc *domain.FetchContext, pageURL string) (domain.FetchResult, error) {
	res, err := f.primary.Fetch(ctx, fc, pageURL)
	if err == nil && !blocked(res) {
		return res, nil
	}
	if f.browser == nil {
		return res, err
	}
	if err != nil {
		f.logger.Warn("http fetch failed, retrying in browser", "url", pageURL, "error", err)
	} else {
		f.logger.Debug("http fetch blocked, retrying in browser", "url", pageURL, "status", res.StatusCode)
	}
	return f.browser.Fetch(ctx, fc, pageURL)
}

func blocked(res domain.FetchResult) bool {
	switch res.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	if len(res.Body) > challengeBodyLimit {
		return false
	}
	lower := strings.ToLower(res.Body)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
