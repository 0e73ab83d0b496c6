package usecase

import (
	"fmt"
	"strings"
	"time"

	"ContentDigest/internal/domain"
)

// maxContentChars bounds what goes into one prompt; anything longer is cut at
// a line boundary.
const maxContentChars = 48000

const (
	videoInstruction = "Summarize this video transcript. Start with a two sentence overview, " +
		"then list the key points as bullets, keeping the [mm:ss] timestamp where each point is made, " +
		"and close with the most quotable line."
	audioInstruction = "Summarize this podcast episode transcript. Start with a two sentence overview, " +
		"then list the main discussion topics as bullets with their [mm:ss] timestamps, " +
		"and note any concrete recommendations made on air."
	textInstruction = "Summarize this article. Start with a two sentence overview, " +
		"then list the key points as bullets, and close with one line on who should read it."
)

// buildPrompt assembles the summarization prompt for the detected kind. A
// custom instruction from the inbox file replaces the default one; the page
// metadata and content always follow.
func buildPrompt(kind domain.ContentKind, article domain.Article, content, custom string) string {
	instruction := strings.TrimSpace(custom)
	if instruction == "" {
		instruction = defaultInstruction(kind)
	}

	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\n")
	if article.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", article.Title)
	}
	if article.SiteName != "" {
		fmt.Fprintf(&sb, "Site: %s\n", article.SiteName)
	}
	if !article.PublishedAt.IsZero() {
		fmt.Fprintf(&sb, "Published: %s\n", article.PublishedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(&sb, "URL: %s\n\n", article.URL)
	sb.WriteString(sectionHeader(kind))
	sb.WriteString("\n")
	sb.WriteString(truncate(content, maxContentChars))
	return sb.String()
}

func defaultInstruction(kind domain.ContentKind) string {
	switch kind {
	case domain.ContentVideo:
		return videoInstruction
	case domain.ContentAudio:
		return audioInstruction
	default:
		return textInstruction
	}
}

func sectionHeader(kind domain.ContentKind) string {
	switch kind {
	case domain.ContentVideo, domain.ContentAudio:
		return "Transcript:"
	default:
		return "Article text:"
	}
}

// renderTranscript flattens a transcript for the prompt, keeping cue timings
// when the source provided them.
func renderTranscript(tr domain.Transcript) string {
	if !tr.Timestamped() {
		return tr.Text
	}
	lines := make([]string, 0, len(tr.Segments))
	for _, seg := range tr.Segments {
		lines = append(lines, formatTimestamp(seg.Start)+" "+seg.Text)
	}
	return strings.Join(lines, "\n")
}

func formatTimestamp(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("[%d:%02d:%02d]", hours, minutes, seconds)
	}
	return fmt.Sprintf("[%02d:%02d]", minutes, seconds)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := strings.LastIndex(s[:limit], "\n")
	if cut <= 0 {
		cut = limit
	}
	return s[:cut] + "\n[content truncated]"
}

// formatDigest renders the Telegram message for a finished summary.
func formatDigest(record domain.SummaryRecord) string {
	title := record.Article.Title
	if title == "" {
		title = record.Article.URL
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", title)
	switch record.ContentKind {
	case domain.ContentVideo:
		fmt.Fprintf(&sb, "_video on %s_\n", record.Platform)
	case domain.ContentAudio:
		fmt.Fprintf(&sb, "_audio on %s_\n", record.Platform)
	}
	sb.WriteString("\n")
	sb.WriteString(record.Summary)
	sb.WriteString("\n\n")
	sb.WriteString(record.Article.URL)
	return sb.String()
}
