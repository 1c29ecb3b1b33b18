package crawlsite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/outreachly/leadgen-crawler/internal/fetch"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: make(map[string]int)}
}

func (f *fakeFetcher) Get(_ context.Context, url string) (fetch.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	body, ok := f.pages[url]
	if !ok {
		return fetch.Result{}, errors.New("not found")
	}
	return fetch.Result{StatusCode: 200, FinalURL: url, Body: []byte(body)}, nil
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func testConfig() Config {
	return Config{Throttle: time.Millisecond}
}

func TestNormalizeWebsite_Idempotent(t *testing.T) {
	t.Parallel()

	a, err := NormalizeWebsite("example.com")
	require.NoError(t, err)
	b, err := NormalizeWebsite("https://example.com")
	require.NoError(t, err)
	require.Equal(t, a.String(), b.String())

	again, err := NormalizeWebsite(a.String())
	require.NoError(t, err)
	require.Equal(t, a.String(), again.String())
}

func TestNormalizeWebsite_Rejects(t *testing.T) {
	t.Parallel()

	_, err := NormalizeWebsite("")
	require.Error(t, err)
	_, err = NormalizeWebsite("ftp://acme.com")
	require.Error(t, err)
}

func TestFindEmail_Homepage(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/": `<html><body><a href="mailto:info@acme.com">mail</a></body></html>`,
	})
	c := New(f, testConfig(), nil)

	email, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.True(t, ok)
	require.Equal(t, "info@acme.com", email)
	require.Equal(t, 1, f.totalCalls())
}

func TestFindEmail_MemoizesResultIncludingMisses(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/": `<html><body>nothing here</body></html>`,
	})
	c := New(f, testConfig(), nil)

	_, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.False(t, ok)
	first := f.totalCalls()

	_, ok = c.FindEmail(context.Background(), "https://acme.com", Hints{})
	require.False(t, ok)
	require.Equal(t, first, f.totalCalls(), "second lookup must not fetch")
}

func TestFindEmail_MemoHit(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/": `<html><body>sales@acme.com</body></html>`,
	})
	c := New(f, testConfig(), nil)

	first, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.True(t, ok)
	again, ok := c.FindEmail(context.Background(), "www.acme.com", Hints{})
	require.True(t, ok)
	require.Equal(t, first, again)
}

func TestFindEmail_SubpageTier(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/":        `<html><body><a href="/contact">Contact us</a></body></html>`,
		"https://acme.com/contact": `<html><body>office@acme.com</body></html>`,
	})
	c := New(f, testConfig(), nil)

	email, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.True(t, ok)
	require.Equal(t, "office@acme.com", email)
}

func TestFindEmail_DocumentTier(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/":            `<html><body><a href="/brochure.pdf">Download</a></body></html>`,
		"https://acme.com/brochure.pdf": "Reach bookings [at] acme [dot] com for availability",
	})
	c := New(f, testConfig(), nil)

	email, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.True(t, ok)
	require.Equal(t, "bookings@acme.com", email)
}

func TestFindEmail_SocialTierViaFacebookAbout(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/":                        `<html><body><a href="https://www.facebook.com/acmeco">fb</a></body></html>`,
		"https://mbasic.facebook.com/acmeco/about": `<html><body>hello@acme.com</body></html>`,
	})
	c := New(f, testConfig(), nil)

	email, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.True(t, ok)
	require.Equal(t, "hello@acme.com", email)
}

func TestFindEmail_WellKnownTier(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/":           `<html><body>plain page</body></html>`,
		"https://acme.com/humans.txt": "Team: webmaster@acme.com",
	})
	c := New(f, testConfig(), nil)

	email, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.True(t, ok)
	require.Equal(t, "webmaster@acme.com", email)
}

func TestFindEmail_SitemapTier(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/":            `<html><body>plain page</body></html>`,
		"https://acme.com/robots.txt":  "Sitemap: https://acme.com/sitemap.xml",
		"https://acme.com/sitemap.xml": `<urlset><url><loc>https://acme.com/imprint</loc></url></urlset>`,
		"https://acme.com/imprint":     `<html><body>legal@acme.com</body></html>`,
	})
	c := New(f, testConfig(), nil)

	email, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.True(t, ok)
	require.Equal(t, "legal@acme.com", email)
}

func TestFindEmail_NameSearchWithoutWebsite(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://mbasic.facebook.com/public/Acme%20Plumbing%20Austin%20TX": `<html><body>
			<a href="https://facebook.com/acmeplumbing">Acme Plumbing</a>
		</body></html>`,
		"https://mbasic.facebook.com/acmeplumbing/about": `<html><body>acme.plumbing@gmail.com</body></html>`,
	})
	c := New(f, testConfig(), nil)

	email, ok := c.FindEmail(context.Background(), "", Hints{Name: "Acme Plumbing", City: "Austin", State: "TX"})
	require.True(t, ok)
	require.Equal(t, "acme.plumbing@gmail.com", email)
}

func TestFindEmail_ScoringPrefersSiteDomain(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/": `<html><body>owner@gmail.com and info@acme.com</body></html>`,
	})
	c := New(f, testConfig(), nil)

	email, ok := c.FindEmail(context.Background(), "acme.com", Hints{})
	require.True(t, ok)
	require.Equal(t, "info@acme.com", email)
}

func TestFindEmail_NeverFetchesSameURLTwiceInOneCall(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{
		"https://acme.com/":      `<html><body><a href="/about">About</a><a href="/about">About again</a></body></html>`,
		"https://acme.com/about": `<html><body>no address</body></html>`,
	})
	c := New(f, testConfig(), nil)

	_, _ = c.FindEmail(context.Background(), "acme.com", Hints{})
	f.mu.Lock()
	defer f.mu.Unlock()
	for url, n := range f.calls {
		require.LessOrEqual(t, n, 1, "url %s fetched more than once", url)
	}
}
