// Package ledger persists the set of already-contacted email addresses used
// for cross-run deduplication.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultDebounce = time.Second

// Ledger is a durable, process-wide set of lowercase email addresses. Adds
// schedule a coalesced flush; the timer resets on every addition so bursts of
// sends collapse into one write.
type Ledger struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]bool
	timer   *time.Timer
}

// Open loads the ledger at path, treating a missing file as an empty set.
func Open(path string, debounce time.Duration, logger *zap.Logger) (*Ledger, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		path:     path,
		debounce: debounce,
		logger:   logger,
		entries:  make(map[string]bool),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var emails []string
	if err := json.Unmarshal(raw, &emails); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	for _, email := range emails {
		l.entries[strings.ToLower(email)] = true
	}
	return l, nil
}

// Contains reports whether email was already contacted.
func (l *Ledger) Contains(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[strings.ToLower(email)]
}

// Add records email and schedules a debounced save. It returns false if the
// entry was already present.
func (l *Ledger) Add(email string) bool {
	email = strings.ToLower(email)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries[email] {
		return false
	}
	l.entries[email] = true
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.debounce, func() {
		if err := l.Flush(); err != nil {
			l.logger.Warn("ledger flush failed", zap.Error(err))
		}
	})
	return true
}

// Len returns the number of recorded addresses.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Flush writes the current set to disk immediately, canceling any pending
// debounced save. Call on shutdown so the last additions are not lost.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	emails := make([]string, 0, len(l.entries))
	for email := range l.entries {
		emails = append(emails, email)
	}
	l.mu.Unlock()

	sort.Strings(emails)
	raw, err := json.MarshalIndent(emails, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
