package extract

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

var locRe = regexp.MustCompile(`(?s)<loc>\s*([^<]+?)\s*</loc>`)

// SitemapURLs samples up to limit <loc> entries from a sitemap or
// sitemap-index body. Malformed XML yields whatever entries the scan finds.
func SitemapURLs(body []byte, limit int) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range locRe.FindAllSubmatch(body, -1) {
		loc := strings.TrimSpace(string(m[1]))
		if loc == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// RobotsSitemaps collects Sitemap: directives from a robots.txt body.
func RobotsSitemaps(body []byte) []string {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 8 || !strings.EqualFold(line[:8], "sitemap:") {
			continue
		}
		if target := strings.TrimSpace(line[8:]); target != "" {
			out = append(out, target)
		}
	}
	return out
}
