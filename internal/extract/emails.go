// Package extract provides pure helpers that pull email candidates and
// crawlable links out of HTML or text blobs. Nothing in this package performs
// network I/O; callers feed it fetched bodies and merge the results.
package extract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	emailaddress "github.com/mcnijman/go-emailaddress"
)

var (
	atToken  = `(?:\(\s*@\s*\)|\[\s*@\s*\]|\(\s*at\s*\)|\[\s*at\s*\]|\s+at\s+)`
	dotToken = `(?:\(\s*dot\s*\)|\[\s*dot\s*\]|\s+dot\s+|\s*\.\s*)`

	// obfuscatedRe matches "name [at] domain [dot] tld" style spellings with
	// arbitrary bracket and whitespace variants.
	obfuscatedRe = regexp.MustCompile(`(?i)([a-z0-9._%+-]{1,64})\s*` + atToken + `\s*([a-z0-9-]{1,63}(?:` + dotToken + `[a-z0-9-]{1,63})+)`)

	dotTokenRe = regexp.MustCompile(`(?i)\(\s*dot\s*\)|\[\s*dot\s*\]|\s+dot\s+|\s*\.\s*`)
)

// Emails returns every plain-text email address found in body, lowercased,
// deduplicated and filtered for obvious non-addresses (asset filenames,
// reserved test domains).
func Emails(body []byte) []string {
	var out []string
	seen := map[string]bool{}
	for _, addr := range emailaddress.Find(body, false) {
		appendEmail(&out, seen, addr.String())
	}
	return out
}

// Obfuscated decodes natural-language-obfuscated addresses such as
// "sales [at] acme [dot] com" from a text blob.
func Obfuscated(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range obfuscatedRe.FindAllStringSubmatch(text, -1) {
		domain := dotTokenRe.ReplaceAllString(m[2], ".")
		domain = strings.ReplaceAll(domain, " ", "")
		appendEmail(&out, seen, m[1]+"@"+domain)
	}
	return out
}

// MailtoTargets extracts addresses from mailto: anchors, dropping any
// ?subject=... suffix.
func MailtoTargets(doc *goquery.Document) []string {
	var out []string
	seen := map[string]bool{}
	doc.Find("a[href^='mailto:']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.Index(addr, "?"); i >= 0 {
			addr = addr[:i]
		}
		appendEmail(&out, seen, strings.TrimSpace(addr))
	})
	return out
}

// JSONLD walks every application/ld+json script in the document and collects
// "email" values at any nesting depth, which covers both top-level email
// fields and contactPoint.email.
func JSONLD(doc *goquery.Document) []string {
	var out []string
	seen := map[string]bool{}
	doc.Find(`script[type='application/ld+json']`).Each(func(_ int, s *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return
		}
		walkJSONLD(payload, &out, seen)
	})
	return out
}

func walkJSONLD(node any, out *[]string, seen map[string]bool) {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			if strings.EqualFold(key, "email") {
				if s, ok := child.(string); ok {
					appendEmail(out, seen, strings.TrimPrefix(strings.TrimSpace(s), "mailto:"))
					continue
				}
			}
			walkJSONLD(child, out, seen)
		}
	case []any:
		for _, child := range v {
			walkJSONLD(child, out, seen)
		}
	}
}

// CFEmail decodes Cloudflare data-cfemail spans. The attribute value is hex
// where the first byte is an XOR key applied to the remainder.
func CFEmail(doc *goquery.Document) []string {
	var out []string
	seen := map[string]bool{}
	doc.Find("[data-cfemail]").Each(func(_ int, s *goquery.Selection) {
		enc, ok := s.Attr("data-cfemail")
		if !ok {
			return
		}
		raw, err := hex.DecodeString(enc)
		if err != nil || len(raw) < 2 {
			return
		}
		key := raw[0]
		decoded := make([]byte, 0, len(raw)-1)
		for _, b := range raw[1:] {
			decoded = append(decoded, b^key)
		}
		appendEmail(&out, seen, string(decoded))
	})
	return out
}

// All runs the full extraction suite over an HTML body: plain regex,
// obfuscated text, mailto anchors, JSON-LD and Cloudflare spans. If the body
// does not parse as HTML only the text extractors contribute.
func All(body []byte) []string {
	var out []string
	seen := map[string]bool{}
	merge := func(emails []string) {
		for _, e := range emails {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	merge(Emails(body))
	merge(Obfuscated(string(body)))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return out
	}
	merge(MailtoTargets(doc))
	merge(JSONLD(doc))
	merge(CFEmail(doc))
	return out
}

// PlainOnly applies only the text extractors. Used for linked documents such
// as PDFs and vCards where HTML structure is not expected.
func PlainOnly(body []byte) []string {
	out := Emails(body)
	seen := map[string]bool{}
	for _, e := range out {
		seen[e] = true
	}
	for _, e := range Obfuscated(string(body)) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func appendEmail(out *[]string, seen map[string]bool, raw string) {
	addr, err := emailaddress.Parse(strings.TrimSpace(raw))
	if err != nil {
		return
	}
	email := strings.ToLower(addr.String())
	if !acceptEmail(email) || seen[email] {
		return
	}
	seen[email] = true
	*out = append(*out, email)
}

// acceptEmail drops addresses that match obvious non-contact artifacts:
// asset filenames that look like user@2x.png, monitoring sandboxes, and
// reserved test domains.
func acceptEmail(email string) bool {
	for _, ext := range []string{".png", ".webp", ".jpg", ".jpeg", ".gif", ".svg"} {
		if strings.HasSuffix(email, ext) {
			return false
		}
	}
	if strings.Contains(email, "@2x.") || strings.Contains(email, "@3x.") {
		return false
	}
	if strings.Contains(email, "sentry") && strings.Contains(email, "wixpress.com") {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	for _, suffix := range []string{".local", ".test", ".example", ".invalid"} {
		if strings.HasSuffix(domain, suffix) {
			return false
		}
	}
	return true
}
