package fetch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"ContentDigest/internal/domain"
)

// cookieEntry mirrors the browser-export JSON format.
type cookieEntry struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// LoadCookies reads a JSON cookie export from path. Entries without a name
// are skipped.
func LoadCookies(path string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}

	var entries []cookieEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse cookie file %s: %w", path, err)
	}

	cookies := make([]*http.Cookie, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:   e.Name,
			Value:  e.Value,
			Domain: e.Domain,
			Path:   e.Path,
		})
	}
	return cookies, nil
}

// NewContext assembles the fetch context handed to every fetching component.
// cookiePath may be empty; a configured path that cannot be read is an error.
func NewContext(userAgent, cookiePath string, headers map[string]string) (*domain.FetchContext, error) {
	fc := &domain.FetchContext{
		UserAgent: userAgent,
		Headers:   headers,
	}
	if cookiePath != "" {
		cookies, err := LoadCookies(cookiePath)
		if err != nil {
			return nil, err
		}
		fc.Cookies = cookies
	}
	return fc, nil
}
