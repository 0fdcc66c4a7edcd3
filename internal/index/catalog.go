package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/summon/internal/domain"
)

// Catalog is the in-memory set of launchable programs together with the
// index state. Both live behind one lock so a merge and its state
// transition are observed atomically.
type Catalog struct {
	mu         sync.RWMutex
	candidates []*domain.ProgramCandidate
	state      domain.IndexState
	lastMerge  time.Time
}

// NewCatalog creates an empty, not indexed catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// MergeAndAdvance appends incoming after the existing candidates using the
// first-wins merge rule and moves the state forward to `to` if that is a
// forward transition. It reports whether the state changed.
func (c *Catalog) MergeAndAdvance(incoming []*domain.ProgramCandidate, to domain.IndexState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replace(domain.Merge(c.candidates, incoming))

	next, advanced := c.state.Advance(to)
	c.state = next
	return advanced
}

// Restore seeds the catalog from a cached snapshot.
// The state never moves backwards, so restoring over a fuller catalog only
// adds missing candidates.
func (c *Catalog) Restore(candidates []*domain.ProgramCandidate, state domain.IndexState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replace(domain.Merge(c.candidates, candidates))
	c.state, _ = c.state.Advance(state)
}

// replace swaps the slice wholesale. Callers hold the write lock.
func (c *Catalog) replace(candidates []*domain.ProgramCandidate) {
	c.candidates = candidates
	c.lastMerge = time.Now()
}

// Snapshot returns the current candidates in catalog order.
// The returned slice is never modified by later merges.
func (c *Catalog) Snapshot() []*domain.ProgramCandidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.candidates[:len(c.candidates):len(c.candidates)]
}

// State returns the current index state.
func (c *Catalog) State() domain.IndexState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Count returns the number of candidates in the catalog.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.candidates)
}

// CountBySource returns the number of candidates per discovering source.
func (c *Catalog) CountBySource() map[domain.Source]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[domain.Source]int)
	for _, candidate := range c.candidates {
		counts[candidate.Source]++
	}
	return counts
}

// LastMerge returns the timestamp of the last merge or restore.
func (c *Catalog) LastMerge() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastMerge
}
