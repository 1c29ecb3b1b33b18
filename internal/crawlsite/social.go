package crawlsite

import (
	"net/url"
	"regexp"
	"strings"
)

// facebookReservedSegments are path prefixes that never identify a profile.
var facebookReservedSegments = map[string]bool{
	"pages": true, "p": true, "people": true, "pg": true,
	"groups": true, "events": true, "sharer": true, "sharer.php": true,
	"login": true, "login.php": true, "public": true, "hashtag": true,
}

// facebookAboutURL rewrites any Facebook URL or bare page name into the
// mobile-basic About view, which renders contact details without script.
// Returns false when no profile handle can be derived.
func facebookAboutURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "facebook.com") && !strings.Contains(raw, "/") {
		// Bare page name.
		return "https://mbasic.facebook.com/" + url.PathEscape(raw) + "/about", true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !strings.HasSuffix(strings.ToLower(u.Hostname()), "facebook.com") {
		return "", false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for _, seg := range segments {
		if seg == "" || facebookReservedSegments[seg] {
			continue
		}
		if seg == "profile.php" {
			if id := u.Query().Get("id"); id != "" {
				return "https://mbasic.facebook.com/profile.php?id=" + url.QueryEscape(id) + "&v=info", true
			}
			return "", false
		}
		return "https://mbasic.facebook.com/" + url.PathEscape(seg) + "/about", true
	}
	return "", false
}

var facebookProfileLinkRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|m\.|mbasic\.)?facebook\.com/([a-zA-Z0-9.\-]{3,60})/?`)

// facebookSearchURL builds a public name-search query from business hints.
func facebookSearchURL(name, city, state string) string {
	query := strings.TrimSpace(strings.Join([]string{name, city, state}, " "))
	return "https://mbasic.facebook.com/public/" + url.PathEscape(query)
}

// facebookProfilesFromSearch pulls up to limit candidate profile handles out
// of a search results page.
func facebookProfilesFromSearch(body []byte, limit int) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range facebookProfileLinkRe.FindAllSubmatch(body, -1) {
		handle := strings.ToLower(string(m[1]))
		if facebookReservedSegments[handle] || strings.HasSuffix(handle, ".php") {
			continue
		}
		if seen[handle] {
			continue
		}
		seen[handle] = true
		out = append(out, handle)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// isFacebookLink reports whether a discovered social link points at Facebook.
func isFacebookLink(link string) bool {
	return strings.Contains(strings.ToLower(link), "facebook.com")
}
