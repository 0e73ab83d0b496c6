package detector

import (
	"regexp"
	"strings"
)

var (
	nonWordExpr = regexp.MustCompile(`[^\p{L}\p{N}]+`)

	// Trailing chrome that newsletters and CMSes append to titles.
	titleSuffixExprs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*[-–—|]\s*by\s+.+$`),
		regexp.MustCompile(`(?i)\s*[-–—|]\s*[\w\s']*newsletter[\w\s']*$`),
		regexp.MustCompile(`\s*\|\s*[^|]+$`),
	}
)

// cleanTitle strips trailing site chrome. If stripping would erase the whole
// title, the original is kept.
func cleanTitle(title string) string {
	cleaned := strings.TrimSpace(title)
	for _, expr := range titleSuffixExprs {
		cleaned = strings.TrimSpace(expr.ReplaceAllString(cleaned, ""))
	}
	if cleaned == "" {
		return strings.TrimSpace(title)
	}
	return cleaned
}

// tokenSet lowercases a title, drops punctuation and returns its word set.
func tokenSet(s string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, tok := range nonWordExpr.Split(strings.ToLower(s), -1) {
		if tok != "" {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// titleSimilarity is token-set Jaccard: shared tokens over all tokens.
func titleSimilarity(a, b string) float64 {
	as, bs := tokenSet(a), tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	shared := 0
	for tok := range as {
		if _, ok := bs[tok]; ok {
			shared++
		}
	}
	union := len(as) + len(bs) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
