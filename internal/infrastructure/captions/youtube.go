package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
	"ContentDigest/internal/transcript"
)

// captionTrack is one entry of the track list embedded in the watch page's
// player response. Unknown fields are ignored.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind,omitempty"`
}

// YouTubeSource extracts transcripts from YouTube caption tracks.
type YouTubeSource struct {
	fetcher      ports.DocumentFetcher
	fetchContext *domain.FetchContext
	timeout      time.Duration
	logger       *slog.Logger
}

var _ transcript.Source = (*YouTubeSource)(nil)

// NewYouTubeSource wires the fetcher used for watch pages and caption tracks.
func NewYouTubeSource(fetcher ports.DocumentFetcher, fc *domain.FetchContext, timeout time.Duration, log *slog.Logger) *YouTubeSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &YouTubeSource{fetcher: fetcher, fetchContext: fc, timeout: timeout, logger: log}
}

// Name identifies the source in logs and stored records.
func (s *YouTubeSource) Name() string { return "youtube-captions" }

// Supports reports whether the candidate is a YouTube video.
func (s *YouTubeSource) Supports(c domain.MediaCandidate) bool {
	return c.Platform == domain.PlatformYouTube
}

// Extract fetches the watch page, locates a caption track and downloads it as
// VTT.
func (s *YouTubeSource) Extract(ctx context.Context, c domain.MediaCandidate) (domain.Transcript, error) {
	if s.fetcher == nil {
		return domain.Transcript{}, fmt.Errorf("fetcher is not configured")
	}
	watchURL := c.CanonicalURL
	if watchURL == "" {
		return domain.Transcript{}, fmt.Errorf("candidate has no canonical URL")
	}

	pageCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	page, err := s.fetcher.Fetch(pageCtx, s.fetchContext, watchURL)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("fetch watch page: %w", err)
	}
	if !page.OK() {
		return domain.Transcript{}, fmt.Errorf("watch page returned status %d", page.StatusCode)
	}

	track, err := pickCaptionTrack(page.Body)
	if err != nil {
		return domain.Transcript{}, err
	}
	s.debug("caption track selected", "language", track.LanguageCode, "kind", track.Kind)

	trackCtx, cancelTrack := context.WithTimeout(ctx, s.timeout)
	defer cancelTrack()
	res, err := s.fetcher.Fetch(trackCtx, s.fetchContext, vttURL(track.BaseURL))
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("fetch caption track: %w", err)
	}
	if !res.OK() {
		return domain.Transcript{}, fmt.Errorf("caption track returned status %d", res.StatusCode)
	}

	tr := transcriptFromVTT(res.Body, track.LanguageCode)
	if tr.Text == "" {
		return domain.Transcript{}, fmt.Errorf("caption track %s yielded no text", track.LanguageCode)
	}
	tr.Source = s.Name()
	return tr, nil
}

// vttURL asks the caption endpoint for WebVTT output.
func vttURL(baseURL string) string {
	if strings.Contains(baseURL, "fmt=") {
		return baseURL
	}
	if strings.Contains(baseURL, "?") {
		return baseURL + "&fmt=vtt"
	}
	return baseURL + "?fmt=vtt"
}

// pickCaptionTrack prefers manually written English tracks, then
// auto-generated English, then whatever comes first.
func pickCaptionTrack(body string) (captionTrack, error) {
	raw, ok := captionTracksJSON(body)
	if !ok {
		return captionTrack{}, fmt.Errorf("no caption tracks on watch page")
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return captionTrack{}, fmt.Errorf("parse caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return captionTrack{}, fmt.Errorf("caption track list is empty")
	}

	var generated *captionTrack
	for i := range tracks {
		if !strings.HasPrefix(tracks[i].LanguageCode, "en") {
			continue
		}
		if tracks[i].Kind != "asr" {
			return tracks[i], nil
		}
		if generated == nil {
			generated = &tracks[i]
		}
	}
	if generated != nil {
		return *generated, nil
	}
	return tracks[0], nil
}

// captionTracksJSON cuts the track list out of the player response. Track
// names can nest arrays, so the end of the list is found by bracket matching
// rather than a lazy regex.
func captionTracksJSON(body string) (string, bool) {
	const marker = `"captionTracks":`
	i := strings.Index(body, marker)
	if i < 0 {
		return "", false
	}

	rest := body[i+len(marker):]
	depth := 0
	inString := false
	escaped := false
	for j := 0; j < len(rest); j++ {
		ch := rest[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return rest[:j+1], true
			}
		}
	}
	return "", false
}

func (s *YouTubeSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
