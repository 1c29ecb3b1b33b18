// Package progress provides the event primitives and per-job broadcast feed
// that the orchestrator uses to report live progress. Observers attach at any
// time; the feed replays buffered history and the current stats snapshot
// before switching them to live delivery.
package progress

import (
	"sync"
	"time"
)

// Type denotes the kind of event carried on a feed.
type Type string

// Supported event types.
const (
	TypeLog   Type = "log"
	TypeStats Type = "stats"
	TypeDone  Type = "done"
	TypePing  Type = "ping"
)

// Stats is the live counter snapshot for a job.
type Stats struct {
	Found     int `json:"found"`
	WithEmail int `json:"with_email"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
}

// Event is a single progress notification.
type Event struct {
	Type       Type      `json:"type"`
	TS         time.Time `json:"ts"`
	Message    string    `json:"message,omitempty"`
	Stats      *Stats    `json:"stats,omitempty"`
	ResultFile string    `json:"result_file,omitempty"`
}

const observerBuffer = 256

// Feed is a one-to-many broadcast channel owned by a single job. Emit never
// blocks; a slow observer loses events rather than stalling the job.
type Feed struct {
	mu      sync.Mutex
	history []Event
	stats   Stats
	subs    map[int]chan Event
	nextID  int
	closed  bool
}

// NewFeed builds an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan Event)}
}

// Emit records and broadcasts evt. Log and done events are buffered for
// replay; stats events update the snapshot; pings are live-only.
func (f *Feed) Emit(evt Event) {
	if evt.TS.IsZero() {
		evt.TS = time.Now().UTC()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	switch evt.Type {
	case TypeLog, TypeDone:
		f.history = append(f.history, evt)
	case TypeStats:
		if evt.Stats != nil {
			f.stats = *evt.Stats
		}
	}
	for _, ch := range f.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Attach registers an observer. The returned channel first receives the full
// buffered history and the current stats snapshot, then live events. The
// second return detaches the observer and closes its channel.
func (f *Feed) Attach() (<-chan Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Event, len(f.history)+observerBuffer)
	for _, evt := range f.history {
		ch <- evt
	}
	snapshot := f.stats
	ch <- Event{Type: TypeStats, TS: time.Now().UTC(), Stats: &snapshot}

	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	detach := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
	return ch, detach
}

// Close detaches every observer. Further Emits are ignored; Attach still
// replays history so late consumers can read a finished job's feed.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
