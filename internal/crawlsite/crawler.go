// Package crawlsite converts a business website into a best-guess contact
// email. The search is an ordered, short-circuiting walk over the site's
// homepage, likely subpages, linked documents, social profiles, well-known
// files and sitemap pages, with a social name search as last resort. It never
// returns an error; every internal failure contributes nothing and the walk
// moves on.
package crawlsite

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/outreachly/leadgen-crawler/internal/extract"
	"github.com/outreachly/leadgen-crawler/internal/fetch"
	"github.com/outreachly/leadgen-crawler/internal/score"
	"github.com/outreachly/leadgen-crawler/internal/telemetry"
)

// Fetcher is the bounded retrieval dependency.
type Fetcher interface {
	Get(ctx context.Context, url string) (fetch.Result, error)
}

// Hints carry optional business identity used for the social name search.
type Hints struct {
	Name  string
	City  string
	State string
}

// Config controls per-call crawl budgets.
type Config struct {
	Throttle        time.Duration
	MaxSubpages     int
	MaxDocuments    int
	MaxSitemapPages int
}

const (
	defaultThrottle        = 400 * time.Millisecond
	defaultMaxSubpages     = 8
	defaultMaxDocuments    = 6
	defaultMaxSitemapPages = 12
	sitemapSamplePerFile   = 25
	maxSitemapFiles        = 3
	maxSearchProfiles      = 2
)

// Crawler resolves websites to contact emails, memoizing per host for the
// process lifetime (misses included).
type Crawler struct {
	cfg     Config
	fetcher Fetcher
	logger  *zap.Logger

	mu   sync.Mutex
	memo map[string]memoResult
}

type memoResult struct {
	email string
	ok    bool
}

// New builds a Crawler. Zero config fields fall back to defaults.
func New(fetcher Fetcher, cfg Config, logger *zap.Logger) *Crawler {
	if cfg.Throttle <= 0 {
		cfg.Throttle = defaultThrottle
	}
	if cfg.MaxSubpages <= 0 {
		cfg.MaxSubpages = defaultMaxSubpages
	}
	if cfg.MaxDocuments <= 0 {
		cfg.MaxDocuments = defaultMaxDocuments
	}
	if cfg.MaxSitemapPages <= 0 {
		cfg.MaxSitemapPages = defaultMaxSitemapPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		memo:    make(map[string]memoResult),
	}
}

// FindEmail returns at most one email for the business. A missing or
// unparseable website falls through to the social name search when a name
// hint is present.
func (c *Crawler) FindEmail(ctx context.Context, website string, hints Hints) (string, bool) {
	site, err := NormalizeWebsite(website)
	if err != nil {
		if hints.Name == "" {
			return "", false
		}
		st := c.newState()
		c.searchSocialByName(ctx, st, hints)
		return score.Best(st.candidates, "")
	}

	host := siteHost(site)
	c.mu.Lock()
	if cached, ok := c.memo[host]; ok {
		c.mu.Unlock()
		return cached.email, cached.ok
	}
	c.mu.Unlock()

	st := c.newState()
	c.crawl(ctx, st, site, hints)
	best, ok := score.Best(st.candidates, host)

	c.mu.Lock()
	c.memo[host] = memoResult{email: best, ok: ok}
	c.mu.Unlock()

	if ok {
		c.logger.Debug("email resolved", zap.String("host", host), zap.String("email", best))
	} else {
		c.logger.Debug("no email found", zap.String("host", host))
	}
	return best, ok
}

type crawlState struct {
	limiter    *rate.Limiter
	visited    map[string]bool
	candidates []string
	candSeen   map[string]bool
}

func (c *Crawler) newState() *crawlState {
	return &crawlState{
		limiter:  rate.NewLimiter(rate.Every(c.cfg.Throttle), 1),
		visited:  make(map[string]bool),
		candSeen: make(map[string]bool),
	}
}

func (st *crawlState) add(emails []string) {
	for _, e := range emails {
		if !st.candSeen[e] {
			st.candSeen[e] = true
			st.candidates = append(st.candidates, e)
		}
	}
}

// fetch retrieves a URL once per call, throttled. Failures return ok=false
// and are never propagated.
func (c *Crawler) fetch(ctx context.Context, st *crawlState, target string) ([]byte, bool) {
	if st.visited[target] {
		return nil, false
	}
	st.visited[target] = true
	if err := st.limiter.Wait(ctx); err != nil {
		return nil, false
	}
	res, err := c.fetcher.Get(ctx, target)
	telemetry.ObserveFetch(err == nil)
	if err != nil {
		c.logger.Debug("fetch miss", zap.String("url", target), zap.Error(err))
		return nil, false
	}
	return res.Body, true
}

func (c *Crawler) crawl(ctx context.Context, st *crawlState, site *url.URL, hints Hints) {
	var (
		subpages  []string
		docs      []string
		social    []string
		homeFinal = site
	)

	// Tier 1: homepage, also harvesting links for the lower tiers.
	if body, ok := c.fetch(ctx, st, site.String()); ok {
		st.add(extract.All(body))
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
			subpages = extract.LikelySubpages(doc, homeFinal, c.cfg.MaxSubpages)
			docs = extract.DocumentLinks(doc, homeFinal, c.cfg.MaxDocuments)
			social = extract.SocialLinks(doc)
		}
	}
	if len(st.candidates) > 0 {
		return
	}

	// Tier 2: likely subpages, stopping at the first page that yields.
	for _, page := range subpages {
		if body, ok := c.fetch(ctx, st, page); ok {
			st.add(extract.All(body))
		}
		if len(st.candidates) > 0 {
			return
		}
	}

	// Tier 3: linked documents, plain-text extraction only.
	for _, doc := range docs {
		if body, ok := c.fetch(ctx, st, doc); ok {
			st.add(extract.PlainOnly(body))
		}
		if len(st.candidates) > 0 {
			return
		}
	}

	// Tier 4: discovered social profiles, Facebook about pages first.
	c.crawlSocial(ctx, st, social)
	if len(st.candidates) > 0 {
		return
	}

	// Tier 5: well-known files.
	for _, path := range []string{"/.well-known/security.txt", "/humans.txt"} {
		if body, ok := c.fetch(ctx, st, site.Scheme+"://"+site.Host+path); ok {
			st.add(extract.PlainOnly(body))
		}
		if len(st.candidates) > 0 {
			return
		}
	}

	// Tier 6: sitemap-listed pages under a shared visit budget.
	c.crawlSitemaps(ctx, st, site)
	if len(st.candidates) > 0 {
		return
	}

	// Tier 7: social name search as last resort.
	if hints.Name != "" {
		c.searchSocialByName(ctx, st, hints)
	}
}

func (c *Crawler) crawlSocial(ctx context.Context, st *crawlState, links []string) {
	var rest []string
	for _, link := range links {
		if !isFacebookLink(link) {
			rest = append(rest, link)
			continue
		}
		about, ok := facebookAboutURL(link)
		if !ok {
			continue
		}
		if body, fetched := c.fetch(ctx, st, about); fetched {
			st.add(extract.All(body))
		}
		if len(st.candidates) > 0 {
			return
		}
	}
	for _, link := range rest {
		if body, fetched := c.fetch(ctx, st, link); fetched {
			st.add(extract.All(body))
		}
		if len(st.candidates) > 0 {
			return
		}
	}
}

func (c *Crawler) crawlSitemaps(ctx context.Context, st *crawlState, site *url.URL) {
	root := site.Scheme + "://" + site.Host
	var sitemaps []string
	if body, ok := c.fetch(ctx, st, root+"/robots.txt"); ok {
		sitemaps = extract.RobotsSitemaps(body)
	}
	if len(sitemaps) == 0 {
		sitemaps = []string{root + "/sitemap.xml"}
	}
	if len(sitemaps) > maxSitemapFiles {
		sitemaps = sitemaps[:maxSitemapFiles]
	}

	budget := c.cfg.MaxSitemapPages
	for _, sitemap := range sitemaps {
		body, ok := c.fetch(ctx, st, sitemap)
		if !ok {
			continue
		}
		for _, page := range extract.SitemapURLs(body, sitemapSamplePerFile) {
			if budget <= 0 {
				return
			}
			// One level of sitemap-index nesting.
			if strings.HasSuffix(strings.ToLower(page), ".xml") {
				if nested, fetched := c.fetch(ctx, st, page); fetched {
					for _, inner := range extract.SitemapURLs(nested, sitemapSamplePerFile) {
						if budget <= 0 {
							return
						}
						budget--
						if pageBody, got := c.fetch(ctx, st, inner); got {
							st.add(extract.All(pageBody))
						}
						if len(st.candidates) > 0 {
							return
						}
					}
				}
				continue
			}
			budget--
			if pageBody, got := c.fetch(ctx, st, page); got {
				st.add(extract.All(pageBody))
			}
			if len(st.candidates) > 0 {
				return
			}
		}
	}
}

func (c *Crawler) searchSocialByName(ctx context.Context, st *crawlState, hints Hints) {
	body, ok := c.fetch(ctx, st, facebookSearchURL(hints.Name, hints.City, hints.State))
	if !ok {
		return
	}
	for _, handle := range facebookProfilesFromSearch(body, maxSearchProfiles) {
		about, valid := facebookAboutURL(handle)
		if !valid {
			continue
		}
		if profile, fetched := c.fetch(ctx, st, about); fetched {
			st.add(extract.All(profile))
		}
		if len(st.candidates) > 0 {
			return
		}
	}
}
