package extract

import (
	"context"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
	<title>How We Cut Our Build Times In Half</title>
	<meta property="og:site_name" content="Engineering Notes">
	<meta property="og:title" content="How We Cut Our Build Times In Half">
	<meta property="article:published_time" content="2026-03-11T09:00:00Z">
</head>
<body>
	<nav><a href="/">Home</a><a href="/archive">Archive</a></nav>
	<article>
		<h1>How We Cut Our Build Times In Half</h1>
		<p>Our monorepo build had crept past twenty minutes, and every engineer on the
		team felt it several times a day. We spent a quarter profiling the pipeline,
		and most of the time went to three avoidable problems.</p>
		<p>First, the dependency graph forced full rebuilds whenever a shared package
		changed, even for consumers that only used a constant from it. Splitting the
		package along usage boundaries removed eighty percent of those rebuilds.</p>
		<p>Second, the test runner serialized suites that had no shared state. Tagging
		the safe suites and fanning them out over the existing worker pool cut the
		test stage from nine minutes to four.</p>
		<p>Finally, the cache keys included a timestamp nobody remembered adding. Fixing
		the key brought the cache hit rate from forty to ninety five percent.</p>
	</article>
	<footer>All rights reserved.</footer>
</body>
</html>`

func TestExtractReadableArticle(t *testing.T) {
	t.Parallel()

	e := NewReadabilityExtractor()
	article, text, err := e.Extract(context.Background(), articleHTML, "https://notes.example/build-times")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if article.Title != "How We Cut Our Build Times In Half" {
		t.Errorf("Title = %q", article.Title)
	}
	if article.URL != "https://notes.example/build-times" {
		t.Errorf("URL = %q", article.URL)
	}
	if article.PublishedAt.IsZero() {
		t.Error("PublishedAt is zero, want the article:published_time value")
	}
	if !strings.Contains(text, "dependency graph") {
		t.Errorf("text misses body content: %q", text)
	}
	if strings.Contains(text, "Archive") {
		t.Errorf("text contains navigation chrome: %q", text)
	}
}

func TestExtractNoReadableText(t *testing.T) {
	t.Parallel()

	e := NewReadabilityExtractor()
	_, _, err := e.Extract(context.Background(), "<html><body></body></html>", "https://notes.example/empty")
	if err == nil {
		t.Fatal("Extract() error = nil, want error for an empty page")
	}
}

func TestExtractBadURL(t *testing.T) {
	t.Parallel()

	e := NewReadabilityExtractor()
	_, _, err := e.Extract(context.Background(), articleHTML, "https://notes.example/%zz")
	if err == nil {
		t.Fatal("Extract() error = nil, want error for a malformed URL")
	}
}
