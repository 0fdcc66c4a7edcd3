package domain

import "time"

const (
	// CacheVersion is written into every snapshot.
	CacheVersion = "1.0"

	// CacheTTL is how long a snapshot stays usable.
	CacheTTL = 12 * time.Hour
)

// CacheRecord is a durable snapshot of the catalog.
type CacheRecord struct {
	Timestamp   time.Time
	FullIndexed bool
	Candidates  []*ProgramCandidate
	Version     string
}

// Age returns how old the snapshot is relative to now.
func (r *CacheRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.Timestamp)
}

// Valid reports whether the snapshot can seed the catalog.
func (r *CacheRecord) Valid(now time.Time, ttl time.Duration) bool {
	if r == nil || len(r.Candidates) == 0 {
		return false
	}
	return r.Age(now) <= ttl
}

// State is the index state a restored snapshot represents.
func (r *CacheRecord) State() IndexState {
	if r.FullIndexed {
		return FullIndexed
	}
	return QuickIndexed
}
