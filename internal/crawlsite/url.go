package crawlsite

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeWebsite standardizes a business website string into an absolute
// URL, injecting https:// when no scheme was given. Normalizing the same
// input twice yields the same result.
func NormalizeWebsite(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty website")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse website: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Host == "" {
		return nil, fmt.Errorf("website %q has no host", raw)
	}
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// siteHost strips a leading www. so memoization and scoring treat
// www.acme.com and acme.com as the same site.
func siteHost(u *url.URL) string {
	return strings.TrimPrefix(u.Hostname(), "www.")
}
