package captions

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ContentDigest/internal/domain"
)

var (
	cueTimingExpr = regexp.MustCompile(`^((?:\d{1,2}:)?\d{2}:\d{2}[.,]\d{3})\s+-->`)
	cueTagExpr    = regexp.MustCompile(`<[^>]*>`)
	spaceExpr     = regexp.MustCompile(`\s+`)
)

// parseVTT turns a WebVTT payload into ordered segments. Styling tags and
// inline timestamps are stripped; lines repeated by rolling captions are
// collapsed into their first occurrence.
func parseVTT(data string) []domain.TranscriptSegment {
	var segments []domain.TranscriptSegment
	var lastText string

	blocks := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		start := time.Duration(-1)
		var textLines []string
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || line == "WEBVTT" ||
				strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE") ||
				strings.HasPrefix(line, "Kind:") || strings.HasPrefix(line, "Language:") {
				continue
			}
			if m := cueTimingExpr.FindStringSubmatch(line); m != nil {
				if d, err := parseCueTimestamp(m[1]); err == nil {
					start = d
				}
				continue
			}
			if start < 0 {
				// Cue identifier line before the timing line.
				continue
			}
			text := cleanCueText(line)
			if text == "" || text == lastText {
				continue
			}
			textLines = append(textLines, text)
			lastText = text
		}
		if start >= 0 && len(textLines) > 0 {
			segments = append(segments, domain.TranscriptSegment{
				Start: start,
				Text:  strings.Join(textLines, " "),
			})
		}
	}
	return segments
}

// transcriptFromVTT assembles a transcript from a VTT payload.
func transcriptFromVTT(data, language string) domain.Transcript {
	segments := parseVTT(data)
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, seg.Text)
	}
	return domain.Transcript{
		Text:     strings.Join(lines, "\n"),
		Segments: segments,
		Language: language,
	}
}

func parseCueTimestamp(s string) (time.Duration, error) {
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")

	var hours, minutes int
	var seconds float64
	var err error
	switch len(parts) {
	case 3:
		if hours, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
		if minutes, err = strconv.Atoi(parts[1]); err != nil {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
		if seconds, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
	case 2:
		if minutes, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
		if seconds, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
	default:
		return 0, fmt.Errorf("malformed timestamp %q", s)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second)), nil
}

func cleanCueText(line string) string {
	line = cueTagExpr.ReplaceAllString(line, "")
	line = html.UnescapeString(line)
	line = strings.ReplaceAll(line, " ", " ")
	return strings.TrimSpace(spaceExpr.ReplaceAllString(line, " "))
}
