package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"ContentDigest/internal/domain"
)

// Client talks to a Whisper-compatible speech-to-text endpoint. The endpoint
// is the API base; the client appends /audio/transcriptions.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewClient creates a reusable HTTP client. An empty model defaults to
// whisper-1.
func NewClient(endpoint, apiKey, model string) *Client {
	if model == "" {
		model = "whisper-1"
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: 5 * time.Minute},
	}
}

type segmentPayload struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

// transcriptionPayload mirrors the verbose_json response format.
type transcriptionPayload struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []segmentPayload `json:"segments"`
}

// Transcribe uploads the media stream and returns the recognized speech.
func (c *Client) Transcribe(ctx context.Context, filename string, media io.Reader) (domain.Transcript, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, media); err != nil {
		return domain.Transcript{}, fmt.Errorf("copy media: %w", err)
	}
	if err := w.WriteField("model", c.model); err != nil {
		return domain.Transcript{}, fmt.Errorf("write model field: %w", err)
	}
	if err := w.WriteField("response_format", "verbose_json"); err != nil {
		return domain.Transcript{}, fmt.Errorf("write format field: %w", err)
	}
	if err := w.Close(); err != nil {
		return domain.Transcript{}, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/audio/transcriptions", &buf)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return domain.Transcript{}, fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return domain.Transcript{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload transcriptionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		_ = resp.Body.Close()
		return domain.Transcript{}, fmt.Errorf("decode response: %w", err)
	}
	if err := resp.Body.Close(); err != nil {
		return domain.Transcript{}, fmt.Errorf("close response body: %w", err)
	}

	segments := make([]domain.TranscriptSegment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		segments = append(segments, domain.TranscriptSegment{
			Start: time.Duration(seg.Start * float64(time.Second)),
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	return domain.Transcript{
		Text:     strings.TrimSpace(payload.Text),
		Segments: segments,
		Language: payload.Language,
	}, nil
}
