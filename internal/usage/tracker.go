// Package usage counts successful launches per display name. The counts
// feed the ranking bonus.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/summon/internal/logger"
	"github.com/MrSnakeDoc/summon/internal/store"
)

// Tracker holds launch counts. Counts only grow.
// A nil blob keeps counts in memory only.
type Tracker struct {
	mu     sync.RWMutex
	counts map[string]int64

	// writeMu serializes persistence so an older snapshot never overwrites
	// a newer one.
	writeMu sync.Mutex
	blob    store.Blob
	log     logger.Logger
}

// New loads the stored counts. Missing or corrupt storage starts empty.
func New(ctx context.Context, blob store.Blob, log logger.Logger) *Tracker {
	t := &Tracker{
		counts: make(map[string]int64),
		blob:   blob,
		log:    log,
	}
	if blob == nil {
		return t
	}

	data, err := blob.Read(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return t
	case err != nil:
		log.Debug("failed to read usage stats", logger.Error(err))
		return t
	}

	var counts map[string]int64
	if err := json.Unmarshal(data, &counts); err != nil {
		log.Debug("ignoring corrupt usage stats", logger.Error(err))
		return t
	}
	for name, count := range counts {
		if count > 0 {
			t.counts[name] = count
		}
	}

	return t
}

// RecordLaunch increments the count for name and persists all counts.
// Persistence is best effort.
func (t *Tracker) RecordLaunch(ctx context.Context, name string) {
	if name == "" {
		return
	}

	t.mu.Lock()
	t.counts[name]++
	t.mu.Unlock()

	if err := t.persist(ctx); err != nil {
		// Don't fail - memory is the primary source
		t.log.Debug("failed to persist usage stats", logger.Error(err))
	}
}

func (t *Tracker) persist(ctx context.Context) error {
	if t.blob == nil {
		return nil
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	data, err := json.MarshalIndent(t.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage stats: %w", err)
	}
	return t.blob.Write(ctx, data)
}

// Count returns the launches recorded for name.
func (t *Tracker) Count(name string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.counts[name]
}

// Snapshot returns a copy of all counts.
func (t *Tracker) Snapshot() map[string]int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[string]int64, len(t.counts))
	for name, count := range t.counts {
		counts[name] = count
	}
	return counts
}
