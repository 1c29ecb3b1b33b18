package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// subpageKeywords mark links that commonly lead to a page carrying contact
// details.
var subpageKeywords = []string{
	"contact", "about", "team", "staff", "support", "help",
	"privacy", "legal", "impressum", "terms", "policy", "connect", "location",
}

var documentKeywords = []string{"privacy", "terms", "legal"}

var socialHosts = []string{
	"facebook.com", "instagram.com", "twitter.com", "x.com", "linkedin.com",
}

// LikelySubpages returns up to limit same-site links whose href or anchor text
// suggests a contact-bearing page, resolved against base.
func LikelySubpages(doc *goquery.Document, base *url.URL, limit int) []string {
	var out []string
	seen := map[string]bool{}
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		probe := strings.ToLower(href + " " + s.Text())
		if !containsAny(probe, subpageKeywords) {
			return true
		}
		abs, ok := resolve(base, href)
		if !ok || abs.Host != base.Host {
			return true
		}
		key := abs.String()
		if seen[key] {
			return true
		}
		seen[key] = true
		out = append(out, key)
		return len(out) < limit
	})
	return out
}

// DocumentLinks returns up to limit links to PDFs, vCards or policy documents.
func DocumentLinks(doc *goquery.Document, base *url.URL, limit int) []string {
	var out []string
	seen := map[string]bool{}
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		isDoc := strings.HasSuffix(lower, ".pdf") || strings.HasSuffix(lower, ".vcf")
		if !isDoc && !containsAny(lower, documentKeywords) {
			return true
		}
		abs, ok := resolve(base, href)
		if !ok {
			return true
		}
		key := abs.String()
		if seen[key] {
			return true
		}
		seen[key] = true
		out = append(out, key)
		return len(out) < limit
	})
	return out
}

// SocialLinks returns links to known social networks in document order.
func SocialLinks(doc *goquery.Document) []string {
	var out []string
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || u.Host == "" {
			return
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		for _, social := range socialHosts {
			if host == social || strings.HasSuffix(host, "."+social) {
				if !seen[href] {
					seen[href] = true
					out = append(out, href)
				}
				return
			}
		}
	})
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, href string) (*url.URL, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil, false
	}
	abs.Fragment = ""
	return abs, true
}
