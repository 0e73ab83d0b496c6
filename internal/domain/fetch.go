package domain

import "net/http"

// FetchContext carries per-run browsing state (identity headers, auth
// cookies) into every component that performs a fetch. It is always passed
// explicitly; nothing in the engine reads ambient state.
type FetchContext struct {
	UserAgent string
	Cookies   []*http.Cookie
	Headers   map[string]string
}

// Apply decorates an outgoing request with the context's identity.
func (fc *FetchContext) Apply(req *http.Request) {
	if fc == nil {
		return
	}
	if fc.UserAgent != "" {
		req.Header.Set("User-Agent", fc.UserAgent)
	}
	for k, v := range fc.Headers {
		req.Header.Set(k, v)
	}
	for _, c := range fc.Cookies {
		req.AddCookie(c)
	}
}

// FetchResult is a completed page retrieval. Non-2xx responses are results,
// not errors: callers inspect the body regardless of status.
type FetchResult struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       string
}

// OK reports a 2xx status.
func (r FetchResult) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }
