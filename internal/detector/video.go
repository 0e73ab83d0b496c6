package detector

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

// maxLinkValidations caps how many main-body links are cross-checked before
// the resolver gives up; maxProxyFetches bounds embed-proxy secondary
// fetches the same way.
const (
	maxLinkValidations = 3
	maxProxyFetches    = 3
)

var (
	wistiaAsyncExpr = regexp.MustCompile(`wistia_async_([A-Za-z0-9]+)`)
	embedProxyExpr  = regexp.MustCompile(`https?://(?:[\w-]+\.)*(?:iframe\.ly|iframely\.net|embed\.ly|embedly\.com)/[^\s"'<>]+`)
)

// videoResolver finds at most one video per page, trying progressively less
// trustworthy discovery strategies and stopping at the first hit.
type videoResolver struct {
	fetcher      ports.DocumentFetcher
	fetchContext *domain.FetchContext
	validator    *videoValidator
	fetchTimeout time.Duration
	logger       *slog.Logger
}

func (r *videoResolver) resolve(ctx context.Context, doc *goquery.Document, articleURL string) (domain.MediaCandidate, bool) {
	if doc == nil {
		return domain.MediaCandidate{}, false
	}
	main := locateMainContent(doc)

	if cand, ok := r.fromPlayers(main); ok {
		r.logger.Debug("video found in main-content player", "platform", cand.Platform, "id", cand.ID)
		return cand, true
	}
	if cand, ok := r.fromAsyncEmbeds(doc); ok {
		r.logger.Debug("video found in async embed", "platform", cand.Platform, "id", cand.ID)
		return cand, true
	}
	if cand, ok := r.fromRawHTML(ctx, doc, main); ok {
		r.logger.Debug("video found in raw html", "platform", cand.Platform, "id", cand.ID)
		return cand, true
	}
	return r.fromMainBodyLinks(ctx, main, doc, articleURL)
}

// fromPlayers inspects player iframes and native video elements inside the
// main content. The author deliberately embedded these, so they are trusted
// without validation.
func (r *videoResolver) fromPlayers(main *goquery.Selection) (domain.MediaCandidate, bool) {
	var found domain.MediaCandidate
	ok := false

	main.Find("iframe").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := iframeSrc(s)
		if src == "" {
			return true
		}
		cand, matched := matchVideoURL(src, domain.DiscoveryIframeEmbed)
		if !matched {
			return true
		}
		found, ok = cand, true
		return false
	})
	if ok {
		return found, true
	}

	main.Find("video").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, src := range videoElementSources(s) {
			if kind, isFile := directFileKind(src); isFile && kind == domain.MediaVideo {
				found, ok = html5VideoCandidate(src), true
				return false
			}
		}
		return true
	})
	return found, ok
}

// fromAsyncEmbeds looks for JS-boot embeds across the whole page: the
// wistia_async_<id> div convention and player script tags. Async snippets
// often live outside the located article body.
func (r *videoResolver) fromAsyncEmbeds(doc *goquery.Document) (domain.MediaCandidate, bool) {
	var found domain.MediaCandidate
	ok := false

	doc.Find(`[class*="wistia_async_"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := wistiaAsyncExpr.FindStringSubmatch(s.AttrOr("class", ""))
		if m == nil {
			return true
		}
		found, ok = wistiaCandidate(m[1], domain.DiscoveryAsyncEmbed), true
		return false
	})
	if ok {
		return found, true
	}

	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		cand, matched := matchVideoURL(s.AttrOr("src", ""), domain.DiscoveryScriptReference)
		if !matched {
			return true
		}
		found, ok = cand, true
		return false
	})
	return found, ok
}

// fromRawHTML serializes the page and scans for platform URLs that no anchor
// or iframe owns (script payloads, JSON blobs), unmasking recognized
// embed-proxy URLs with one bounded secondary fetch each. URLs sitting on
// anchors stay the business of the link strategy and its validation.
func (r *videoResolver) fromRawHTML(ctx context.Context, doc *goquery.Document, main *goquery.Selection) (domain.MediaCandidate, bool) {
	html, err := doc.Html()
	if err != nil {
		return domain.MediaCandidate{}, false
	}

	ownedKeys, ownedURLs := ownedMediaRefs(doc)

	var proxyURLs []string
	seenProxy := map[string]struct{}{}
	main.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		src := iframeSrc(s)
		if src == "" || !embedProxyExpr.MatchString(src) {
			return
		}
		if _, dup := seenProxy[src]; !dup {
			seenProxy[src] = struct{}{}
			proxyURLs = append(proxyURLs, src)
		}
	})
	for _, raw := range embedProxyExpr.FindAllString(html, -1) {
		if _, dup := seenProxy[raw]; dup {
			continue
		}
		if _, attached := ownedURLs[raw]; attached {
			continue
		}
		seenProxy[raw] = struct{}{}
		proxyURLs = append(proxyURLs, raw)
	}

	for i, proxyURL := range proxyURLs {
		if i >= maxProxyFetches {
			break
		}
		if cand, ok := r.unmaskProxy(ctx, proxyURL); ok {
			return cand, true
		}
	}

	for _, cand := range scanMatches(html, videoPatterns, domain.DiscoveryHTMLReference) {
		if _, owned := ownedKeys[candidateKey(cand)]; !owned {
			return cand, true
		}
	}
	return domain.MediaCandidate{}, false
}

// unmaskProxy fetches a proxy wrapper page and re-matches its body against
// the platform table.
func (r *videoResolver) unmaskProxy(ctx context.Context, proxyURL string) (domain.MediaCandidate, bool) {
	if r.fetcher == nil {
		return domain.MediaCandidate{}, false
	}
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	res, err := r.fetcher.Fetch(fetchCtx, r.fetchContext, proxyURL)
	if err != nil || !res.OK() {
		r.logger.Debug("embed proxy fetch failed", "url", proxyURL, "err", err)
		return domain.MediaCandidate{}, false
	}
	if matches := scanMatches(res.Body, videoPatterns, domain.DiscoveryHTMLReference); len(matches) > 0 {
		return matches[0], true
	}
	return domain.MediaCandidate{}, false
}

// fromMainBodyLinks is the weakest strategy: prose links to platform pages,
// scoped to the main content. Every candidate must survive validation; at
// most maxLinkValidations are checked and the first accepted one wins. No
// best-guess fallback exists past the budget.
func (r *videoResolver) fromMainBodyLinks(ctx context.Context, main *goquery.Selection, doc *goquery.Document, articleURL string) (domain.MediaCandidate, bool) {
	var candidates []domain.MediaCandidate
	seen := map[string]struct{}{}
	main.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || href == articleURL {
			return
		}
		cand, matched := matchVideoURL(href, domain.DiscoveryMainBodyLink)
		if !matched {
			return
		}
		key := candidateKey(cand)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, cand)
	})
	if len(candidates) == 0 || r.validator == nil {
		return domain.MediaCandidate{}, false
	}

	for i, cand := range candidates {
		if i >= maxLinkValidations {
			r.logger.Debug("link validation budget exhausted", "skipped", len(candidates)-i)
			break
		}
		verdict := r.validator.validate(ctx, cand, doc)
		if verdict.Accepted {
			r.logger.Debug("link candidate validated",
				"platform", cand.Platform, "id", cand.ID,
				"reason", verdict.Reason, "similarity", verdict.TitleSimilarity)
			return cand, true
		}
		r.logger.Debug("link candidate rejected",
			"platform", cand.Platform, "id", cand.ID,
			"reason", verdict.Reason, "similarity", verdict.TitleSimilarity)
	}
	return domain.MediaCandidate{}, false
}

// ownedMediaRefs catalogs every platform reference already attached to an
// anchor or iframe, both as candidate keys and as raw attribute values.
func ownedMediaRefs(doc *goquery.Document) (map[string]struct{}, map[string]struct{}) {
	keys := map[string]struct{}{}
	urls := map[string]struct{}{}
	record := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		urls[raw] = struct{}{}
		if cand, ok := matchVideoURL(raw, domain.DiscoveryHTMLReference); ok {
			keys[candidateKey(cand)] = struct{}{}
		}
	}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		record(s.AttrOr("href", ""))
	})
	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		record(iframeSrc(s))
	})
	return keys, urls
}

// iframeSrc prefers src and falls back to the lazy-load attribute.
func iframeSrc(s *goquery.Selection) string {
	if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
		return src
	}
	return strings.TrimSpace(s.AttrOr("data-src", ""))
}

// videoElementSources gathers the src attribute and nested <source> children
// of a native video element.
func videoElementSources(s *goquery.Selection) []string {
	var out []string
	if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
		out = append(out, src)
	}
	s.Find("source").Each(func(_ int, source *goquery.Selection) {
		if src := strings.TrimSpace(source.AttrOr("src", "")); src != "" {
			out = append(out, src)
		}
	})
	return out
}
