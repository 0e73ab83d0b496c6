package detector

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

// A strong title match stands alone; a moderate one needs the publish dates
// to agree within a day.
const (
	strongTitleSimilarity   = 0.65
	combinedTitleSimilarity = 0.50
	maxDateDeltaDays        = 1
)

var titleSelectors = []struct{ selector, attr string }{
	{`meta[property="og:title"]`, "content"},
	{`meta[name="twitter:title"]`, "content"},
	{"h1", ""},
	{"title", ""},
}

var dateSelectors = []struct{ selector, attr string }{
	{`meta[itemprop="datePublished"]`, "content"},
	{`meta[itemprop="uploadDate"]`, "content"},
	{`meta[property="article:published_time"]`, "content"},
	{`meta[property="og:video:release_date"]`, "content"},
	{`meta[name="date"]`, "content"},
	{"time[datetime]", "datetime"},
}

// videoValidator cross-checks link-discovered candidates against the article
// that linked them. Prose links often point at related or recommended videos,
// so a link is only believed when the platform page looks like the same
// content.
type videoValidator struct {
	fetcher      ports.DocumentFetcher
	fetchContext *domain.FetchContext
	timeout      time.Duration
	onVerdict    func(domain.ValidationVerdict)
	logger       *slog.Logger
}

func newVideoValidator(fetcher ports.DocumentFetcher, fc *domain.FetchContext, timeout time.Duration, onVerdict func(domain.ValidationVerdict), logger *slog.Logger) *videoValidator {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &videoValidator{fetcher: fetcher, fetchContext: fc, timeout: timeout, onVerdict: onVerdict, logger: logger}
}

// validate fetches the candidate's public page and compares titles, falling
// back to publish-date agreement for moderate matches. Any fetch problem
// rejects the candidate; it never propagates an error.
func (v *videoValidator) validate(ctx context.Context, cand domain.MediaCandidate, article *goquery.Document) domain.ValidationVerdict {
	verdict := v.check(ctx, cand, article)
	if v.onVerdict != nil {
		v.onVerdict(verdict)
	}
	return verdict
}

func (v *videoValidator) check(ctx context.Context, cand domain.MediaCandidate, article *goquery.Document) domain.ValidationVerdict {
	if v.fetcher == nil {
		return domain.ValidationVerdict{Reason: domain.ReasonFetchError}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	res, err := v.fetcher.Fetch(fetchCtx, v.fetchContext, cand.CanonicalURL)
	if err != nil || !res.OK() {
		v.logger.Debug("validation fetch failed", "url", cand.CanonicalURL, "status", res.StatusCode, "err", err)
		return domain.ValidationVerdict{Reason: domain.ReasonFetchError}
	}

	page, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if err != nil {
		return domain.ValidationVerdict{Reason: domain.ReasonFetchError}
	}

	platformTitle := extractTitle(page)
	if platformTitle == "" {
		return domain.ValidationVerdict{Reason: domain.ReasonNoMatch}
	}

	verdict := domain.ValidationVerdict{
		TitleSimilarity: titleSimilarity(cleanTitle(platformTitle), cleanTitle(extractTitle(article))),
	}
	if platformDate, ok := extractPublishDate(page); ok {
		if articleDate, ok := extractPublishDate(article); ok {
			verdict.DateKnown = true
			verdict.DateDeltaDays = dayDelta(platformDate, articleDate)
		}
	}

	switch {
	case verdict.TitleSimilarity >= strongTitleSimilarity:
		verdict.Accepted = true
		verdict.Reason = domain.ReasonStrongTitleMatch
	case verdict.TitleSimilarity >= combinedTitleSimilarity && verdict.DateKnown && verdict.DateDeltaDays <= maxDateDeltaDays:
		verdict.Accepted = true
		verdict.Reason = domain.ReasonTitlePlusDateMatch
	default:
		verdict.Reason = domain.ReasonNoMatch
	}
	return verdict
}

// extractTitle walks the selector chain; meta titles win over the <title>
// tag, which platforms pad with site branding.
func extractTitle(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	for _, ts := range titleSelectors {
		node := doc.Find(ts.selector).First()
		if node.Length() == 0 {
			continue
		}
		value := node.Text()
		if ts.attr != "" {
			value = node.AttrOr(ts.attr, "")
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

func extractPublishDate(doc *goquery.Document) (time.Time, bool) {
	if doc == nil {
		return time.Time{}, false
	}
	for _, ds := range dateSelectors {
		raw := strings.TrimSpace(doc.Find(ds.selector).First().AttrOr(ds.attr, ""))
		if raw == "" {
			continue
		}
		if parsed, err := dateparse.ParseAny(raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// dayDelta is the absolute distance between two publish dates in whole days.
func dayDelta(a, b time.Time) int {
	delta := a.Sub(b)
	if delta < 0 {
		delta = -delta
	}
	return int(delta / (24 * time.Hour))
}
