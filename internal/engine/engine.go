// Package engine is the public face of summon: it finds programs by a
// free-form name and launches them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/summon/internal/cache"
	"github.com/MrSnakeDoc/summon/internal/collector"
	"github.com/MrSnakeDoc/summon/internal/domain"
	"github.com/MrSnakeDoc/summon/internal/history"
	"github.com/MrSnakeDoc/summon/internal/index"
	"github.com/MrSnakeDoc/summon/internal/indexer"
	"github.com/MrSnakeDoc/summon/internal/launcher"
	"github.com/MrSnakeDoc/summon/internal/logger"
	"github.com/MrSnakeDoc/summon/internal/metrics"
	"github.com/MrSnakeDoc/summon/internal/sources/aliases"
	"github.com/MrSnakeDoc/summon/internal/store"
	"github.com/MrSnakeDoc/summon/internal/usage"
)

// Status codes returned by Launch.
const (
	StatusOK     = 0
	StatusFailed = 1
)

// DefaultLimit is the number of results Search returns by default.
const DefaultLimit = 5

// Options wires an Engine. Collectors are used as given; a nil set means
// that phase discovers nothing.
type Options struct {
	Quick []collector.Named
	Full  []collector.Named

	QuickTimeout time.Duration
	FullTimeout  time.Duration

	// CacheEnabled turns on snapshots and usage persistence.
	CacheEnabled bool
	CacheBlob    store.Blob
	CacheTTL     time.Duration
	UsageBlob    store.Blob

	// Rebuild ignores the stored snapshot so the next build collects from
	// scratch and overwrites it.
	Rebuild bool

	// AutoIndex starts the background worker when caching is enabled.
	AutoIndex bool
	IndexWait time.Duration // bounded wait for the worker, 5s when zero

	Phonetic domain.Transliterator // nil disables phonetic tiers
	Aliases  *aliases.Table
	Launcher launcher.Starter
	History  history.Sink // nil disables launch history

	MetricsTextfile string
	Gatherer        prometheus.Gatherer

	Log logger.Logger
}

// LaunchOptions tunes a single Launch.
type LaunchOptions struct {
	ForceReindex bool // synchronously complete both index phases first
	Wait         bool // wait for the background worker before indexing
}

// Engine resolves queries against the catalog and launches matches.
type Engine struct {
	catalog  *index.Catalog
	coord    *indexer.Coordinator
	matcher  *domain.Matcher
	usage    *usage.Tracker
	launcher launcher.Starter
	history  history.Sink
	opts     Options
	log      logger.Logger

	cleanupOnce sync.Once
}

// New builds the engine, restores the cached catalog unless Rebuild is set
// and, when AutoIndex and caching are both on, starts background indexing.
// It never blocks on collectors.
func New(ctx context.Context, opts Options) *Engine {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.IndexWait <= 0 {
		opts.IndexWait = indexer.DefaultWait
	}
	if opts.Launcher == nil {
		opts.Launcher = launcher.New(nil)
	}

	var snapshots *cache.Cache
	var usageBlob store.Blob
	if opts.CacheEnabled {
		if opts.CacheBlob != nil {
			snapshots = cache.New(opts.CacheBlob, opts.CacheTTL, opts.Log.With(logger.String("component", "cache")))
		}
		usageBlob = opts.UsageBlob
	}

	catalog := index.NewCatalog()
	coord := indexer.New(catalog, indexer.Options{
		Quick:        opts.Quick,
		Full:         opts.Full,
		QuickTimeout: opts.QuickTimeout,
		FullTimeout:  opts.FullTimeout,
		Aliases:      opts.Aliases,
		Cache:        snapshots,
	}, opts.Log.With(logger.String("component", "indexer")))

	e := &Engine{
		catalog:  catalog,
		coord:    coord,
		matcher:  domain.NewMatcher(opts.Phonetic),
		usage:    usage.New(ctx, usageBlob, opts.Log),
		launcher: opts.Launcher,
		history:  opts.History,
		opts:     opts,
		log:      opts.Log,
	}

	if opts.CacheEnabled && !opts.Rebuild {
		coord.LoadCache(ctx)
	}
	if opts.AutoIndex && opts.CacheEnabled {
		coord.Start()
	}

	return e
}

// ensureUsable makes sure the catalog has been quick indexed: it waits for
// the background worker when asked to, then builds synchronously.
func (e *Engine) ensureUsable(ctx context.Context, wait bool) {
	if e.catalog.State() >= domain.QuickIndexed {
		return
	}
	if wait && e.coord.WaitQuick(ctx, e.opts.IndexWait) {
		return
	}

	e.log.Info("catalog not indexed yet, running quick index")
	if err := e.coord.EnsureQuick(ctx); err != nil {
		e.log.Warn("quick index failed", logger.Error(err))
	}
}

// Search returns up to limit programs matching query, best first.
// A non-positive limit uses DefaultLimit.
func (e *Engine) Search(ctx context.Context, query string, limit int, wait bool) []*domain.ProgramCandidate {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if domain.Normalize(query) == "" {
		return nil
	}

	e.ensureUsable(ctx, wait)

	results := e.matcher.Search(query, e.catalog.Snapshot(), e.usage, limit)
	metrics.IncSearch(len(results) > 0)
	return results
}

// Match returns the best program for query, or nil.
func (e *Engine) Match(ctx context.Context, query string, wait bool) *domain.ProgramCandidate {
	results := e.Search(ctx, query, 1, wait)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// Launch finds the best program for query and starts it. When nothing
// matches a partially indexed catalog, the full index is built and the
// query retried. It returns a human readable message and a status code.
func (e *Engine) Launch(ctx context.Context, query string, opts LaunchOptions) (string, int) {
	if opts.ForceReindex {
		if err := e.Index(ctx); err != nil {
			e.log.Warn("reindex failed", logger.Error(err))
		}
	} else {
		e.ensureUsable(ctx, opts.Wait)
	}

	candidate := e.matcher.Match(query, e.catalog.Snapshot(), e.usage)
	if candidate == nil && e.catalog.State() < domain.FullIndexed {
		e.log.Info("no match in quick index, running full index", logger.String("query", query))
		if err := e.coord.EnsureFull(ctx); err != nil {
			e.log.Warn("full index failed", logger.Error(err))
		}
		candidate = e.matcher.Match(query, e.catalog.Snapshot(), e.usage)
	}

	event := history.Event{OccurredAt: time.Now(), Query: query}

	if candidate == nil {
		message := fmt.Sprintf("program not found: '%s'", query)
		metrics.IncLaunch(metrics.LaunchNotFound)
		event.Message = message
		e.record(ctx, event)
		return message, StatusFailed
	}

	event.DisplayName = candidate.DisplayName
	event.Target = candidate.ExecutablePath

	if err := e.launcher.Start(ctx, candidate.ExecutablePath); err != nil {
		message := fmt.Sprintf("failed to launch %s: %v", candidate.DisplayName, err)
		metrics.IncLaunch(metrics.LaunchFailed)
		e.log.Warn("launch failed",
			logger.String("program", candidate.DisplayName),
			logger.String("target", candidate.ExecutablePath),
			logger.Error(err))
		event.Message = message
		e.record(ctx, event)
		return message, StatusFailed
	}

	e.usage.RecordLaunch(ctx, candidate.DisplayName)
	metrics.IncLaunch(metrics.LaunchSuccess)

	message := "launched: " + candidate.DisplayName
	event.Success = true
	event.Message = message
	e.record(ctx, event)
	return message, StatusOK
}

// Index synchronously completes both index phases.
func (e *Engine) Index(ctx context.Context) error {
	if err := e.coord.EnsureQuick(ctx); err != nil {
		return fmt.Errorf("quick index: %w", err)
	}
	if err := e.coord.EnsureFull(ctx); err != nil {
		return fmt.Errorf("full index: %w", err)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, event history.Event) {
	if e.history == nil {
		return
	}
	if err := e.history.Send(ctx, event); err != nil {
		e.log.Debug("failed to record launch history", logger.Error(err))
	}
}

// History returns the n most recent launch attempts.
func (e *Engine) History(ctx context.Context, n int) ([]history.Event, error) {
	if e.history == nil {
		return nil, errors.New("launch history is disabled")
	}
	return e.history.Recent(ctx, n)
}

// Stats describes the catalog and usage counters.
type Stats struct {
	State      domain.IndexState
	Candidates int
	BySource   map[domain.Source]int
	LastMerge  time.Time
	Usage      map[string]int64
}

// Stats returns a point-in-time view of the engine.
func (e *Engine) Stats() Stats {
	return Stats{
		State:      e.catalog.State(),
		Candidates: e.catalog.Count(),
		BySource:   e.catalog.CountBySource(),
		LastMerge:  e.catalog.LastMerge(),
		Usage:      e.usage.Snapshot(),
	}
}

// Cleanup stops background indexing without waiting for running
// collectors, exports metrics and closes launch history.
// It is safe to call more than once.
func (e *Engine) Cleanup() {
	e.cleanupOnce.Do(func() {
		e.coord.Stop()

		if e.opts.MetricsTextfile != "" && e.opts.Gatherer != nil {
			if err := metrics.WriteTextfile(e.opts.MetricsTextfile, e.opts.Gatherer); err != nil {
				e.log.Warn("failed to export metrics", logger.Error(err))
			}
		}

		if e.history != nil {
			if err := e.history.Close(); err != nil {
				e.log.Debug("failed to close launch history", logger.Error(err))
			}
		}
	})
}
