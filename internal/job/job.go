// Package job defines the orchestration unit for one outreach run and the
// process-wide registry that owns all jobs.
package job

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/outreachly/leadgen-crawler/internal/progress"
)

// Params are the submission parameters for one run.
type Params struct {
	Niche          string
	Cities         []string
	Cap            int
	Subject        string
	Body           string
	YourSite       string
	IgnorePrevious bool
}

// LogLine is one timestamped entry in a job's log.
type LogLine struct {
	TS      time.Time `json:"ts"`
	Message string    `json:"message"`
}

// Job tracks the state of one asynchronous run. Log and stat mutations are
// safe for concurrent workers; once done the job is effectively immutable.
type Job struct {
	ID        uuid.UUID
	Params    Params
	CreatedAt time.Time

	cancelled atomic.Bool

	mu         sync.Mutex
	log        []LogLine
	stats      progress.Stats
	done       bool
	resultFile string
	feed       *progress.Feed
}

// New builds a registered-but-not-yet-running job.
func New(params Params) *Job {
	return &Job{
		ID:        uuid.New(),
		Params:    params,
		CreatedAt: time.Now().UTC(),
		feed:      progress.NewFeed(),
	}
}

// Logf appends a timestamped line and broadcasts it.
func (j *Job) Logf(format string, args ...any) {
	line := LogLine{TS: time.Now().UTC(), Message: fmt.Sprintf(format, args...)}
	j.mu.Lock()
	j.log = append(j.log, line)
	j.mu.Unlock()
	j.feed.Emit(progress.Event{Type: progress.TypeLog, TS: line.TS, Message: line.Message})
}

// Update applies fn to the stats under lock and broadcasts the new snapshot.
func (j *Job) Update(fn func(*progress.Stats)) {
	j.mu.Lock()
	fn(&j.stats)
	snapshot := j.stats
	j.mu.Unlock()
	j.feed.Emit(progress.Event{Type: progress.TypeStats, Stats: &snapshot})
}

// Stats returns the current counter snapshot.
func (j *Job) Stats() progress.Stats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

// Log returns a copy of the accumulated log lines.
func (j *Job) Log() []LogLine {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]LogLine(nil), j.log...)
}

// Feed exposes the job's progress feed for observers.
func (j *Job) Feed() *progress.Feed {
	return j.feed
}

// Cancel sets the advisory cancellation flag. In-flight work is allowed to
// finish; loops observe the flag at their boundaries.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
}

// Cancelled reports whether cancellation was requested.
func (j *Job) Cancelled() bool {
	return j.cancelled.Load()
}

// Ping broadcasts a keepalive to attached observers.
func (j *Job) Ping() {
	j.feed.Emit(progress.Event{Type: progress.TypePing})
}

// Finish marks the job done, records the result file, and broadcasts the
// final done event carrying the closing stats.
func (j *Job) Finish(resultFile string) {
	j.mu.Lock()
	if j.done {
		j.mu.Unlock()
		return
	}
	j.done = true
	j.resultFile = resultFile
	snapshot := j.stats
	j.mu.Unlock()
	j.feed.Emit(progress.Event{
		Type:       progress.TypeDone,
		Stats:      &snapshot,
		ResultFile: resultFile,
	})
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done
}

// ResultFile returns the output artifact path, empty until done.
func (j *Job) ResultFile() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.resultFile
}

// Registry is the process-wide owner of all jobs.
type Registry struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[uuid.UUID]*Job)}
}

// Add registers a job.
func (r *Registry) Add(j *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
}

// Get looks a job up by id.
func (r *Registry) Get(id uuid.UUID) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	return j, ok
}

// Cancel requests cancellation for the job with the given id.
func (r *Registry) Cancel(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return false
	}
	j.Cancel()
	return true
}
