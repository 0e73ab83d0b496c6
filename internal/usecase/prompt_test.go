package usecase

import (
	"strings"
	"testing"
	"time"

	"ContentDigest/internal/domain"
)

func TestBuildPromptPicksInstructionForKind(t *testing.T) {
	t.Parallel()

	article := domain.Article{URL: "https://blog.example/p"}

	cases := []struct {
		kind   domain.ContentKind
		want   string
		header string
	}{
		{domain.ContentVideo, "video transcript", "Transcript:"},
		{domain.ContentAudio, "podcast episode", "Transcript:"},
		{domain.ContentTextOnly, "this article", "Article text:"},
	}
	for _, tc := range cases {
		prompt := buildPrompt(tc.kind, article, "content", "")
		if !strings.Contains(prompt, tc.want) {
			t.Errorf("%s prompt misses %q: %q", tc.kind, tc.want, prompt)
		}
		if !strings.Contains(prompt, tc.header) {
			t.Errorf("%s prompt misses section %q", tc.kind, tc.header)
		}
	}
}

func TestBuildPromptCustomInstructionWins(t *testing.T) {
	t.Parallel()

	prompt := buildPrompt(domain.ContentVideo, domain.Article{URL: "u"}, "content", "  Translate to German first.  ")
	if !strings.HasPrefix(prompt, "Translate to German first.") {
		t.Errorf("prompt does not start with the custom instruction: %q", prompt)
	}
	if strings.Contains(prompt, videoInstruction) {
		t.Error("default instruction still present alongside the custom one")
	}
}

func TestBuildPromptMetadataBlock(t *testing.T) {
	t.Parallel()

	article := domain.Article{
		URL:         "https://blog.example/p",
		Title:       "Going Faster",
		SiteName:    "Example Blog",
		PublishedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	}
	prompt := buildPrompt(domain.ContentTextOnly, article, "body", "")

	for _, want := range []string{
		"Title: Going Faster",
		"Site: Example Blog",
		"Published: 2024-03-09",
		"URL: https://blog.example/p",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt misses %q", want)
		}
	}
}

func TestBuildPromptOmitsUnknownMetadata(t *testing.T) {
	t.Parallel()

	prompt := buildPrompt(domain.ContentTextOnly, domain.Article{URL: "u"}, "body", "")
	if strings.Contains(prompt, "Title:") || strings.Contains(prompt, "Published:") {
		t.Errorf("prompt shows empty metadata lines: %q", prompt)
	}
}

func TestRenderTranscript(t *testing.T) {
	t.Parallel()

	timed := domain.Transcript{
		Text: "hello there",
		Segments: []domain.TranscriptSegment{
			{Start: 5 * time.Second, Text: "hello"},
			{Start: 125 * time.Second, Text: "there"},
		},
	}
	got := renderTranscript(timed)
	want := "[00:05] hello\n[02:05] there"
	if got != want {
		t.Errorf("renderTranscript() = %q, want %q", got, want)
	}

	plain := domain.Transcript{Text: "no cue timings here"}
	if got := renderTranscript(plain); got != plain.Text {
		t.Errorf("renderTranscript() = %q, want the raw text", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "[00:00]"},
		{5 * time.Second, "[00:05]"},
		{125 * time.Second, "[02:05]"},
		{59*time.Minute + 59*time.Second, "[59:59]"},
		{time.Hour + 2*time.Minute + 3*time.Second, "[1:02:03]"},
	}
	for _, tc := range cases {
		if got := formatTimestamp(tc.in); got != tc.want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateCutsAtLineBoundary(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("a", 40) + "\n" + strings.Repeat("b", 40)
	got := truncate(content, 60)
	if !strings.HasSuffix(got, "\n[content truncated]") {
		t.Errorf("truncated content has no marker: %q", got)
	}
	if strings.Contains(got, "b") {
		t.Errorf("cut landed past the line boundary: %q", got)
	}

	if got := truncate("short", 60); got != "short" {
		t.Errorf("truncate() rewrote content under the limit: %q", got)
	}
}

func TestFormatDigest(t *testing.T) {
	t.Parallel()

	record := domain.SummaryRecord{
		Article:     domain.Article{URL: "https://blog.example/p", Title: "Going Faster"},
		ContentKind: domain.ContentVideo,
		Platform:    domain.PlatformYouTube,
		Summary:     "the gist",
	}
	digest := formatDigest(record)
	for _, want := range []string{"*Going Faster*", "_video on youtube_", "the gist", "https://blog.example/p"} {
		if !strings.Contains(digest, want) {
			t.Errorf("digest misses %q: %q", want, digest)
		}
	}
}

func TestFormatDigestFallsBackToURL(t *testing.T) {
	t.Parallel()

	record := domain.SummaryRecord{
		Article:     domain.Article{URL: "https://blog.example/p"},
		ContentKind: domain.ContentTextOnly,
		Summary:     "s",
	}
	digest := formatDigest(record)
	if !strings.HasPrefix(digest, "*https://blog.example/p*") {
		t.Errorf("digest title fallback missing: %q", digest)
	}
	if strings.Contains(digest, "_video") || strings.Contains(digest, "_audio") {
		t.Errorf("text digest carries a media line: %q", digest)
	}
}
