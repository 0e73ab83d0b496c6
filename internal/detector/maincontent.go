package detector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// mainContentSelectors are tried in order; the first non-empty match wins.
var mainContentSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	".post-content",
	".entry-content",
}

const chromeSelector = "nav, aside, footer, header"

var chromeKeywords = []string{"sidebar", "navigation", "footer", "header", "menu"}

// locateMainContent returns the subtree holding the article body. When no
// semantic container exists it falls back to a clone of the whole document
// with navigation chrome stripped, so later scans only see residual content.
// The worst case is the full document unchanged; it never fails.
func locateMainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range mainContentSelectors {
		found := doc.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if found.Children().Length() > 0 || strings.TrimSpace(found.Text()) != "" {
			return found
		}
	}
	return strippedBody(doc)
}

func strippedBody(doc *goquery.Document) *goquery.Selection {
	clone := doc.Selection.Clone()
	clone.Find(chromeSelector).Remove()
	clone.Find("[class],[id]").Each(func(_ int, s *goquery.Selection) {
		marker := strings.ToLower(s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
		for _, kw := range chromeKeywords {
			if strings.Contains(marker, kw) {
				s.Remove()
				return
			}
		}
	})
	return clone
}
