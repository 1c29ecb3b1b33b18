// Package fetch wraps network retrieval with per-attempt timeouts, a hard
// watchdog ceiling, a process-wide concurrency gate, retry with exponential
// backoff, and a response body size cap.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/sync/semaphore"
)

// ErrWatchdogExceeded reports that an attempt outlived the hard wall-clock
// ceiling regardless of lower-level timeout state.
var ErrWatchdogExceeded = errors.New("fetch: watchdog ceiling exceeded")

// Config controls client behavior. Zero fields fall back to defaults.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	Watchdog     time.Duration
	MaxBodyBytes int
	MaxInFlight  int64
	MaxRetries   int
	BackoffBase  time.Duration
}

const (
	defaultTimeout      = 10 * time.Second
	defaultWatchdog     = 15 * time.Second
	defaultMaxBodyBytes = 1500 * 1024
	defaultMaxInFlight  = 5
	defaultMaxRetries   = 2
	defaultBackoffBase  = 500 * time.Millisecond
)

// Result is a successfully completed fetch. Body is truncated at the
// configured cap; truncation is not an error.
type Result struct {
	StatusCode  int
	FinalURL    string
	ContentType string
	Body        []byte
}

// Client executes bounded HTTP GETs through a shared Colly collector. The
// concurrency gate is owned by the Client, so one Client should be shared by
// every crawl in the process.
type Client struct {
	cfg  Config
	gate *semaphore.Weighted
	base *colly.Collector
}

// New builds a Client from cfg, applying defaults for unset fields.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Watchdog <= 0 {
		cfg.Watchdog = defaultWatchdog
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = defaultMaxInFlight
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}

	c := colly.NewCollector(
		colly.MaxBodySize(cfg.MaxBodyBytes),
		colly.IgnoreRobotsTxt(),
	)
	c.WithTransport(newHTTPTransport())
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.SetRequestTimeout(cfg.Timeout)

	return &Client{
		cfg:  cfg,
		gate: semaphore.NewWeighted(cfg.MaxInFlight),
		base: c,
	}
}

// Get retrieves url, retrying failed attempts with exponential backoff until
// the retry budget or ctx is exhausted.
func (c *Client) Get(ctx context.Context, url string) (Result, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.BackoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return Result{}, fmt.Errorf("fetch backoff wait: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
		res, err := c.attempt(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return Result{}, lastErr
}

func (c *Client) attempt(ctx context.Context, url string) (Result, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("fetch gate wait: %w", err)
	}
	defer c.gate.Release(1)

	watchCtx, cancel := context.WithTimeoutCause(ctx, c.cfg.Watchdog, ErrWatchdogExceeded)
	defer cancel()

	var (
		result   Result
		fetchErr error
	)
	collector := c.base.Clone()
	collector.UserAgent = c.base.UserAgent
	collector.SetRequestTimeout(c.cfg.Timeout)
	collector.WithTransport(newHTTPTransport())

	collector.OnResponse(func(r *colly.Response) {
		result = Result{
			StatusCode:  r.StatusCode,
			FinalURL:    r.Request.URL.String(),
			ContentType: r.Headers.Get("Content-Type"),
			Body:        append([]byte(nil), r.Body...),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-watchCtx.Done():
		return Result{}, fmt.Errorf("fetch %s: %w", url, context.Cause(watchCtx))
	case err := <-done:
		if err != nil {
			return Result{}, fmt.Errorf("fetch %s: %w", url, err)
		}
		if fetchErr != nil {
			return Result{}, fmt.Errorf("fetch %s: %w", url, fetchErr)
		}
		return result, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
