package detector

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentDigest/internal/domain"
)

// audioResolver collects every plausible audio source on the page: native
// audio elements, direct file links and podcast player iframes. Audio
// candidates are taken at face value; the false-positive surface is far
// smaller than for video, so there is no validation pass and multiple
// results are kept.
type audioResolver struct {
	logger *slog.Logger
}

func (r *audioResolver) resolve(doc *goquery.Document) []domain.MediaCandidate {
	if doc == nil {
		return nil
	}

	var out []domain.MediaCandidate
	seen := map[string]struct{}{}
	add := func(c domain.MediaCandidate) {
		// Dedup by URL: the same file referenced from an <audio> element and a
		// download link is one source.
		key := c.CanonicalURL
		if key == "" {
			key = candidateKey(c)
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	doc.Find("audio").Each(func(_ int, s *goquery.Selection) {
		if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
			add(htmlAudioCandidate(src))
		}
		s.Find("source").Each(func(_ int, source *goquery.Selection) {
			if src := strings.TrimSpace(source.AttrOr("src", "")); src != "" {
				add(htmlAudioCandidate(src))
			}
		})
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		if kind, ok := directFileKind(href); ok && kind == domain.MediaAudio {
			if cand, built := directFileCandidate(href, domain.DiscoveryDirectFile); built {
				add(cand)
			}
		}
	})

	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		src := iframeSrc(s)
		if src == "" {
			return
		}
		if cand, ok := matchAudioURL(src, domain.DiscoveryIframeEmbed); ok {
			add(cand)
		}
	})

	if len(out) > 0 {
		r.logger.Debug("audio sources found", "count", len(out))
	}
	return out
}
