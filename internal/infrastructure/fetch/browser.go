package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"

	"ContentDigest/internal/domain"
)

// BrowserFetcher renders pages in headless Chrome for sites that gate plain
// HTTP clients behind JavaScript challenges.
type BrowserFetcher struct {
	headless bool
	timeout  time.Duration
	logf     func(string, ...interface{})
}

// NewBrowserFetcher configures a Chrome-backed fetcher. A zero timeout
// defaults to 30s; logf receives chromedp diagnostics and may be nil.
func NewBrowserFetcher(headless bool, timeout time.Duration, logf func(string, ...interface{})) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &BrowserFetcher{headless: headless, timeout: timeout, logf: logf}
}

// Fetch navigates to pageURL in a fresh browser context and returns the
// rendered DOM. Cookies from the fetch context are not injected; the browser
// keeps its own profile.
func (b *BrowserFetcher) Fetch(ctx context.Context, fc *domain.FetchContext, pageURL string) (domain.FetchResult, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if fc != nil && fc.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(fc.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(b.logf))
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, b.timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("browser render %s: %w", pageURL, err)
	}

	return domain.FetchResult{
		URL:        pageURL,
		FinalURL:   pageURL,
		StatusCode: http.StatusOK,
		Body:       html,
	}, nil
}
