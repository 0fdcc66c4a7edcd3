// Package cache persists catalog snapshots so a new process can answer
// queries before any collector has run.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MrSnakeDoc/summon/internal/domain"
	"github.com/MrSnakeDoc/summon/internal/logger"
	"github.com/MrSnakeDoc/summon/internal/store"
)

// Cache reads and writes the snapshot record.
type Cache struct {
	blob store.Blob
	ttl  time.Duration
	log  logger.Logger
	now  func() time.Time
}

// New creates a cache over blob. A non-positive ttl uses domain.CacheTTL.
func New(blob store.Blob, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = domain.CacheTTL
	}
	return &Cache{blob: blob, ttl: ttl, log: log, now: time.Now}
}

// record is the on-disk layout. Timestamp is seconds since the epoch.
type record struct {
	Timestamp   float64           `json:"timestamp"`
	FullIndexed bool              `json:"full_indexed"`
	Candidates  []json.RawMessage `json:"candidates"`
	Version     string            `json:"version"`
}

type candidateRecord struct {
	DisplayName    string            `json:"display_name"`
	ExecutablePath string            `json:"executable_path"`
	Source         string            `json:"source"`
	Aliases        []string          `json:"aliases"`
	Metadata       map[string]string `json:"metadata"`
}

// Load returns the stored snapshot when it is present, decodable, younger
// than the TTL and holds at least one usable candidate.
// Individual malformed entries are skipped.
func (c *Cache) Load(ctx context.Context) (*domain.CacheRecord, bool) {
	data, err := c.blob.Read(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Warn("failed to read cache", logger.Error(err))
		}
		return nil, false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		c.log.Warn("ignoring unreadable cache", logger.Error(err))
		return nil, false
	}

	now := c.now()
	snapshot := &domain.CacheRecord{
		Timestamp:   fromEpoch(rec.Timestamp),
		FullIndexed: rec.FullIndexed,
		Version:     rec.Version,
		Candidates:  decodeCandidates(rec.Candidates),
	}

	if age := snapshot.Age(now); age > c.ttl {
		c.log.Info("cache expired, reindexing",
			logger.Duration("age", age.Round(time.Minute)),
			logger.Duration("ttl", c.ttl))
		return nil, false
	}
	if !snapshot.Valid(now, c.ttl) {
		c.log.Info("cache holds no usable candidates")
		return nil, false
	}

	skipped := len(rec.Candidates) - len(snapshot.Candidates)
	c.log.Debug("cache loaded",
		logger.Int("candidates", len(snapshot.Candidates)),
		logger.Int("skipped", skipped),
		logger.Bool("full_indexed", snapshot.FullIndexed))

	return snapshot, true
}

func decodeCandidates(raw []json.RawMessage) []*domain.ProgramCandidate {
	candidates := make([]*domain.ProgramCandidate, 0, len(raw))
	for _, entry := range raw {
		var cr candidateRecord
		if err := json.Unmarshal(entry, &cr); err != nil {
			continue
		}
		if cr.ExecutablePath == "" {
			continue
		}
		source := domain.Source(cr.Source)
		if source == "" {
			source = domain.SourceCache
		}
		candidates = append(candidates, &domain.ProgramCandidate{
			DisplayName:    cr.DisplayName,
			ExecutablePath: cr.ExecutablePath,
			Source:         source,
			Aliases:        cr.Aliases,
			Metadata:       cr.Metadata,
		})
	}
	return candidates
}

// Save overwrites the snapshot with candidates.
func (c *Cache) Save(ctx context.Context, candidates []*domain.ProgramCandidate, fullIndexed bool) error {
	rec := record{
		Timestamp:   toEpoch(c.now()),
		FullIndexed: fullIndexed,
		Candidates:  make([]json.RawMessage, 0, len(candidates)),
		Version:     domain.CacheVersion,
	}

	for _, candidate := range candidates {
		entry, err := json.Marshal(candidateRecord{
			DisplayName:    candidate.DisplayName,
			ExecutablePath: candidate.ExecutablePath,
			Source:         string(candidate.Source),
			Aliases:        nonNil(candidate.Aliases),
			Metadata:       candidate.Metadata,
		})
		if err != nil {
			continue
		}
		rec.Candidates = append(rec.Candidates, entry)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := c.blob.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	c.log.Debug("cache saved",
		logger.Int("candidates", len(rec.Candidates)),
		logger.Bool("full_indexed", fullIndexed))
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromEpoch(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}
