// Package runner implements the run orchestrator: the state machine that fans
// a niche and city list out into search queries, walks the business source
// page by page, resolves contact emails concurrently, enforces per-run and
// cross-run dedupe plus the send cap, and streams progress to observers.
package runner

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/outreachly/leadgen-crawler/internal/crawlsite"
	"github.com/outreachly/leadgen-crawler/internal/geo"
	"github.com/outreachly/leadgen-crawler/internal/job"
	"github.com/outreachly/leadgen-crawler/internal/ledger"
	"github.com/outreachly/leadgen-crawler/internal/mailer"
	"github.com/outreachly/leadgen-crawler/internal/places"
	"github.com/outreachly/leadgen-crawler/internal/progress"
	"github.com/outreachly/leadgen-crawler/internal/telemetry"
)

// EmailFinder resolves a business website to at most one contact email.
type EmailFinder interface {
	FindEmail(ctx context.Context, website string, hints crawlsite.Hints) (string, bool)
}

// Config controls orchestrator behavior.
type Config struct {
	MaxSendCap        int
	Concurrency       int
	PageSize          int
	BusinessDelay     time.Duration
	Heartbeat         time.Duration
	ResendOnShortfall bool
	ResultsDir        string
}

const (
	defaultMaxSendCap  = 100
	defaultConcurrency = 6
	defaultPageSize    = 20
	defaultHeartbeat   = 10 * time.Second
)

// Runner launches and drives jobs. All jobs share the source, crawler,
// sender and ledger; the crawler's fetch gate provides global backpressure.
type Runner struct {
	cfg      Config
	source   places.Source
	finder   EmailFinder
	sender   mailer.Sender
	ledger   *ledger.Ledger
	registry *job.Registry
	logger   *zap.Logger
}

// New builds a Runner. Zero config fields get defaults.
func New(
	cfg Config,
	source places.Source,
	finder EmailFinder,
	sender mailer.Sender,
	led *ledger.Ledger,
	registry *job.Registry,
	logger *zap.Logger,
) *Runner {
	if cfg.MaxSendCap <= 0 {
		cfg.MaxSendCap = defaultMaxSendCap
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = defaultHeartbeat
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		source:   source,
		finder:   finder,
		sender:   sender,
		ledger:   led,
		registry: registry,
		logger:   logger,
	}
}

// Start registers a job for params and launches its background execution,
// returning immediately.
func (r *Runner) Start(params job.Params) *job.Job {
	j := job.New(params)
	r.registry.Add(j)
	go r.run(j)
	return j
}

type runState struct {
	mu         sync.Mutex
	targetCap  int
	sent       int
	seenSites  map[string]bool
	usedEmails map[string]bool
	rows       []ResultRow
}

func (st *runState) capReached() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sent >= st.targetCap
}

func (st *runState) markSite(site string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.seenSites[site] {
		return false
	}
	st.seenSites[site] = true
	return true
}

func (st *runState) reserveEmail(email string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.usedEmails[email] {
		return false
	}
	st.usedEmails[email] = true
	return true
}

func (st *runState) appendRow(row ResultRow) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.rows = append(st.rows, row)
	if row.Status == StatusSent {
		st.sent++
	}
}

func (st *runState) snapshotRows() []ResultRow {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]ResultRow(nil), st.rows...)
}

// run is the background execution of one job. It always reaches a terminal
// state: any unexpected failure is logged and the job is still marked done.
func (r *Runner) run(j *job.Job) {
	ctx := context.Background()
	telemetry.JobStarted()
	defer telemetry.JobFinished()

	targetCap := j.Params.Cap
	if targetCap <= 0 || targetCap > r.cfg.MaxSendCap {
		targetCap = r.cfg.MaxSendCap
	}
	st := &runState{
		targetCap:  targetCap,
		seenSites:  make(map[string]bool),
		usedEmails: make(map[string]bool),
	}

	stopHeartbeat := r.startHeartbeat(j)
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("job run panicked",
				zap.String("job_id", j.ID.String()), zap.Any("panic", rec))
			j.Logf("run aborted by internal error: %v", rec)
		}
		stopHeartbeat()
		r.finalize(j, st)
	}()

	areas := geo.ExpandAll(j.Params.Cities)
	j.Logf("run started: niche=%q areas=%d cap=%d", j.Params.Niche, len(areas), targetCap)

	r.pass(ctx, j, st, areas, false)

	if !st.capReached() && !j.Cancelled() && r.cfg.ResendOnShortfall {
		j.Logf("cap shortfall after primary pass (%d/%d): retrying including previously contacted",
			j.Stats().Sent, targetCap)
		st.mu.Lock()
		st.seenSites = make(map[string]bool)
		st.mu.Unlock()
		r.pass(ctx, j, st, areas, true)
	}
}

// pass walks every area and phrasing through the business source. With
// ignoreLedger set it allows previously-contacted addresses again while still
// honoring per-run dedupe.
func (r *Runner) pass(ctx context.Context, j *job.Job, st *runState, areas []string, ignoreLedger bool) {
	for _, area := range areas {
		if j.Cancelled() || st.capReached() {
			return
		}
		for _, query := range geo.Phrasings(j.Params.Niche, area) {
			if j.Cancelled() || st.capReached() {
				return
			}
			r.walkQuery(ctx, j, st, query, ignoreLedger)
		}
	}
}

func (r *Runner) walkQuery(ctx context.Context, j *job.Job, st *runState, query string, ignoreLedger bool) {
	cursor := ""
	for {
		if j.Cancelled() || st.capReached() {
			return
		}
		page, err := r.source.FetchPage(ctx, places.PageRequest{
			Query:    query,
			Cursor:   cursor,
			PageSize: r.cfg.PageSize,
		})
		if err != nil {
			j.Logf("query %q exhausted: %v", query, err)
			return
		}
		if len(page.Items) == 0 {
			return
		}
		j.Update(func(s *progress.Stats) { s.Found += len(page.Items) })
		telemetry.ObserveBusinesses(len(page.Items))

		r.processPage(ctx, j, st, page.Items, ignoreLedger)

		if page.NextCursor == "" {
			return
		}
		cursor = page.NextCursor
	}
}

// processPage fans one page of businesses out to a bounded worker pool. Row
// order within a page is unspecified; workers race.
func (r *Runner) processPage(ctx context.Context, j *job.Job, st *runState, items []places.Business, ignoreLedger bool) {
	work := make(chan places.Business)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for biz := range work {
				if j.Cancelled() || st.capReached() {
					continue
				}
				r.safeProcessBusiness(ctx, j, st, biz, ignoreLedger)
				if r.cfg.BusinessDelay > 0 && !j.Cancelled() {
					time.Sleep(r.cfg.BusinessDelay)
				}
			}
		}()
	}
	for _, biz := range items {
		work <- biz
	}
	close(work)
	wg.Wait()
}

// safeProcessBusiness keeps a worker goroutine alive when a single business
// blows up; the business is recorded as skipped and the pool moves on.
func (r *Runner) safeProcessBusiness(ctx context.Context, j *job.Job, st *runState, biz places.Business, ignoreLedger bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("business processing panicked",
				zap.String("job_id", j.ID.String()),
				zap.String("business", biz.Name),
				zap.Any("panic", rec))
			j.Update(func(s *progress.Stats) { s.Skipped++ })
			j.Logf("skip %s: internal error", biz.Name)
		}
	}()
	r.processBusiness(ctx, j, st, biz, ignoreLedger)
}

func (r *Runner) processBusiness(ctx context.Context, j *job.Job, st *runState, biz places.Business, ignoreLedger bool) {
	skip := func(reason string) {
		j.Update(func(s *progress.Stats) { s.Skipped++ })
		j.Logf("skip %s: %s", biz.Name, reason)
	}

	if strings.TrimSpace(biz.Website) == "" {
		skip("no website")
		return
	}
	siteKey := strings.ToLower(strings.TrimSpace(biz.Website))
	if !st.markSite(siteKey) {
		skip("website already seen this run")
		return
	}

	email, ok := r.finder.FindEmail(ctx, biz.Website, crawlsite.Hints{
		Name:  biz.Name,
		City:  biz.City,
		State: biz.State,
	})
	if !ok {
		skip("no email found")
		return
	}
	email = strings.ToLower(email)
	j.Update(func(s *progress.Stats) { s.WithEmail++ })
	telemetry.ObserveEmailFound()

	if !ignoreLedger && !j.Params.IgnorePrevious && r.ledger.Contains(email) {
		skip("already contacted in a previous run")
		return
	}
	if !st.reserveEmail(email) {
		skip("email already used this run")
		return
	}
	if st.capReached() {
		return
	}

	tctx := TemplateContext{
		Company:  biz.Name,
		City:     biz.City,
		Website:  biz.Website,
		YourSite: j.Params.YourSite,
	}
	subject := renderTemplate(j.Params.Subject, tctx)
	body := renderTemplate(j.Params.Body, tctx)

	row := ResultRow{
		Email:   email,
		Company: biz.Name,
		City:    biz.City,
		Website: biz.Website,
	}
	if err := r.sender.Send(ctx, email, subject, body); err != nil {
		row.Status = StatusSendFailed
		st.appendRow(row)
		j.Update(func(s *progress.Stats) { s.Skipped++ })
		telemetry.ObserveSend(false)
		j.Logf("send failed for %s <%s>: %v", biz.Name, email, err)
		return
	}
	r.ledger.Add(email)
	row.Status = StatusSent
	st.appendRow(row)
	j.Update(func(s *progress.Stats) { s.Sent++ })
	telemetry.ObserveSend(true)
	j.Logf("sent to %s <%s>", biz.Name, email)
}

// startHeartbeat emits a keepalive log line and ping on a fixed interval for
// the life of the job. The returned stop function is idempotent.
func (r *Runner) startHeartbeat(j *job.Job) func() {
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(r.cfg.Heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				stats := j.Stats()
				j.Logf("still working: found=%d withEmail=%d sent=%d skipped=%d",
					stats.Found, stats.WithEmail, stats.Sent, stats.Skipped)
				j.Ping()
			}
		}
	}()
	return func() { once.Do(func() { close(stop) }) }
}

// finalize flushes result rows, marks the job done and notifies observers.
// Runs for every termination path: exhaustion, cap, cancellation, panic.
func (r *Runner) finalize(j *job.Job, st *runState) {
	if j.Cancelled() {
		j.Logf("cancellation observed; stopping")
	}

	rows := st.snapshotRows()
	path := filepath.Join(r.cfg.ResultsDir, "leads-"+j.ID.String()+".csv")
	if err := writeResults(path, rows); err != nil {
		r.logger.Error("write results failed",
			zap.String("job_id", j.ID.String()), zap.Error(err))
		j.Logf("failed to write results file: %v", err)
		path = ""
	}

	stats := j.Stats()
	j.Logf("run finished: found=%d withEmail=%d sent=%d skipped=%d rows=%d",
		stats.Found, stats.WithEmail, stats.Sent, stats.Skipped, len(rows))
	j.Finish(path)
	j.Feed().Close()
}
