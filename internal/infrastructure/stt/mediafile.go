package stt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/transcript"
)

// defaultMaxMediaBytes bounds downloads handed to speech-to-text.
const defaultMaxMediaBytes = 128 << 20

// MediaFileSource downloads directly hosted media and runs it through
// speech-to-text.
type MediaFileSource struct {
	client       *Client
	http         *http.Client
	fetchContext *domain.FetchContext
	maxBytes     int64
	logger       *slog.Logger
}

var _ transcript.Source = (*MediaFileSource)(nil)

// NewMediaFileSource wires the speech-to-text client used for downloaded
// files.
func NewMediaFileSource(client *Client, fc *domain.FetchContext, log *slog.Logger) *MediaFileSource {
	return &MediaFileSource{
		client:       client,
		http:         &http.Client{Timeout: 10 * time.Minute},
		fetchContext: fc,
		maxBytes:     defaultMaxMediaBytes,
		logger:       log,
	}
}

// Name identifies the source in logs and stored records.
func (s *MediaFileSource) Name() string { return "speech-to-text" }

// Supports reports whether the candidate is a downloadable media file.
func (s *MediaFileSource) Supports(c domain.MediaCandidate) bool {
	return c.RequiresDownload && c.CanonicalURL != ""
}

// Extract streams the media file into the transcription endpoint.
func (s *MediaFileSource) Extract(ctx context.Context, c domain.MediaCandidate) (domain.Transcript, error) {
	if s.client == nil {
		return domain.Transcript{}, fmt.Errorf("speech-to-text client is not configured")
	}
	mediaURL := c.CanonicalURL
	if mediaURL == "" {
		return domain.Transcript{}, fmt.Errorf("candidate has no canonical URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("build request: %w", err)
	}
	s.fetchContext.Apply(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("download media %s: %w", mediaURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Transcript{}, fmt.Errorf("media download returned status %d", resp.StatusCode)
	}

	s.debug("transcribing media file", "url", mediaURL, "kind", c.Kind)
	tr, err := s.client.Transcribe(ctx, mediaFilename(mediaURL), &cappedReader{r: resp.Body, max: s.maxBytes})
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("transcribe %s: %w", mediaURL, err)
	}
	tr.Source = s.Name()
	return tr, nil
}

// mediaFilename derives an upload name from the URL path.
func mediaFilename(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return "media"
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return "media"
	}
	return name
}

// cappedReader fails once more than max bytes flow through, so oversized
// media aborts the upload instead of being silently truncated.
type cappedReader struct {
	r   io.Reader
	max int64
	n   int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.n > c.max {
		return n, fmt.Errorf("media exceeds %d byte limit", c.max)
	}
	return n, err
}

func (s *MediaFileSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
