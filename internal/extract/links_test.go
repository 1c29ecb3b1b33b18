package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestLikelySubpages_KeywordsAndSameHost(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
		<a href="/contact">Contact</a>
		<a href="/about-us">About Us</a>
		<a href="/products">Products</a>
		<a href="https://other.example.org/contact">External contact</a>
		<a href="/help">Need Help?</a>
	</body></html>`)
	base := mustURL(t, "https://acme.com/")
	got := LikelySubpages(doc, base, 8)
	require.Equal(t, []string{
		"https://acme.com/contact",
		"https://acme.com/about-us",
		"https://acme.com/help",
	}, got)
}

func TestLikelySubpages_HonorsLimit(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
		<a href="/contact">x</a><a href="/about">x</a><a href="/team">x</a>
	</body></html>`)
	got := LikelySubpages(doc, mustURL(t, "https://acme.com/"), 2)
	require.Len(t, got, 2)
}

func TestDocumentLinks(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
		<a href="/brochure.PDF">Brochure</a>
		<a href="/card.vcf">vCard</a>
		<a href="/legal/notice">Legal</a>
		<a href="/products">Products</a>
	</body></html>`)
	got := DocumentLinks(doc, mustURL(t, "https://acme.com/"), 6)
	require.Equal(t, []string{
		"https://acme.com/brochure.PDF",
		"https://acme.com/card.vcf",
		"https://acme.com/legal/notice",
	}, got)
}

func TestSocialLinks_OrderedAndDeduped(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
		<a href="https://www.facebook.com/acmeco">fb</a>
		<a href="https://instagram.com/acmeco">ig</a>
		<a href="https://www.facebook.com/acmeco">fb again</a>
		<a href="https://x.com/acmeco">x</a>
		<a href="https://example.com/">site</a>
	</body></html>`)
	got := SocialLinks(doc)
	require.Equal(t, []string{
		"https://www.facebook.com/acmeco",
		"https://instagram.com/acmeco",
		"https://x.com/acmeco",
	}, got)
}

func TestSitemapURLs_SamplesUpToLimit(t *testing.T) {
	t.Parallel()

	body := []byte(`<?xml version="1.0"?>
	<urlset>
		<url><loc>https://acme.com/</loc></url>
		<url><loc> https://acme.com/contact </loc></url>
		<url><loc>https://acme.com/team</loc></url>
	</urlset>`)
	require.Equal(t, []string{
		"https://acme.com/",
		"https://acme.com/contact",
	}, SitemapURLs(body, 2))
}

func TestRobotsSitemaps(t *testing.T) {
	t.Parallel()

	body := []byte("User-agent: *\nDisallow: /admin\nSitemap: https://acme.com/sitemap.xml\nsitemap: https://acme.com/news.xml\n")
	require.Equal(t, []string{
		"https://acme.com/sitemap.xml",
		"https://acme.com/news.xml",
	}, RobotsSitemaps(body))
}
