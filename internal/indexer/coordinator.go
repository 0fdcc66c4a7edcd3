// Package indexer builds the catalog in two phases.
//
// The quick phase runs the cheap collectors (start menu, PATH) and makes
// the catalog usable; the full phase adds the expensive ones (install
// roots, registry, shortcuts). Each phase runs at most once per process,
// fans out to a bounded worker pool and gives every collector its own
// timeout. A collector that times out is abandoned.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/summon/internal/cache"
	"github.com/MrSnakeDoc/summon/internal/collector"
	"github.com/MrSnakeDoc/summon/internal/domain"
	"github.com/MrSnakeDoc/summon/internal/index"
	"github.com/MrSnakeDoc/summon/internal/logger"
	"github.com/MrSnakeDoc/summon/internal/metrics"
	"github.com/MrSnakeDoc/summon/internal/sources/aliases"
)

// ErrStopped is returned by builds requested after Stop.
var ErrStopped = errors.New("indexer stopped")

var errCollectorPanic = errors.New("collector panicked")

const (
	DefaultQuickWorkers = 2
	DefaultFullWorkers  = 3
	DefaultQuickTimeout = 30 * time.Second
	DefaultFullTimeout  = 60 * time.Second
	DefaultWait         = 5 * time.Second

	// saveTimeout bounds a snapshot write after a phase.
	saveTimeout = 10 * time.Second
)

const (
	phaseQuick = "quick"
	phaseFull  = "full"
)

// Options configures a Coordinator. Zero values take the defaults.
type Options struct {
	Quick []collector.Named
	Full  []collector.Named

	QuickWorkers int
	FullWorkers  int
	QuickTimeout time.Duration
	FullTimeout  time.Duration

	Aliases *aliases.Table // nil attaches no aliases
	Cache   *cache.Cache   // nil disables snapshots
}

func (o *Options) applyDefaults() {
	if o.QuickWorkers <= 0 {
		o.QuickWorkers = DefaultQuickWorkers
	}
	if o.FullWorkers <= 0 {
		o.FullWorkers = DefaultFullWorkers
	}
	if o.QuickTimeout <= 0 {
		o.QuickTimeout = DefaultQuickTimeout
	}
	if o.FullTimeout <= 0 {
		o.FullTimeout = DefaultFullTimeout
	}
}

// Coordinator owns the catalog's index state machine:
// NotIndexed -> QuickIndexed -> FullIndexed.
type Coordinator struct {
	catalog *index.Catalog
	opts    Options
	log     logger.Logger

	// ctx is cancelled by Stop and parents every build.
	ctx     context.Context
	cancel  context.CancelFunc
	stopped atomic.Bool

	builds   singleflight.Group
	quickSem *semaphore.Weighted
	fullSem  *semaphore.Weighted

	quickReady     chan struct{} // closed once the catalog is at least quick indexed
	quickReadyOnce sync.Once

	startOnce  sync.Once
	workerDone chan struct{} // nil until Start launches the worker
	workerMu   sync.Mutex
	stopOnce   sync.Once
}

// New creates a coordinator for catalog.
func New(catalog *index.Catalog, opts Options, log logger.Logger) *Coordinator {
	opts.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		catalog:    catalog,
		opts:       opts,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		quickSem:   semaphore.NewWeighted(int64(opts.QuickWorkers)),
		fullSem:    semaphore.NewWeighted(int64(opts.FullWorkers)),
		quickReady: make(chan struct{}),
	}
	if catalog.State() >= domain.QuickIndexed {
		c.markQuickReady()
	}
	return c
}

// Catalog returns the catalog the coordinator fills.
func (c *Coordinator) Catalog() *index.Catalog {
	return c.catalog
}

// LoadCache seeds the catalog from the snapshot, if one is usable.
func (c *Coordinator) LoadCache(ctx context.Context) bool {
	if c.opts.Cache == nil {
		return false
	}

	snapshot, ok := c.opts.Cache.Load(ctx)
	metrics.IncCacheLoad(ok)
	if !ok {
		return false
	}

	from := c.catalog.State()
	c.catalog.Restore(snapshot.Candidates, snapshot.State())
	c.recordTransition(from, c.catalog.State())
	c.markQuickReady()
	metrics.SetCatalogSize(c.catalog.Count())

	c.log.Info("catalog restored from cache",
		logger.Int("candidates", len(snapshot.Candidates)),
		logger.String("state", c.catalog.State().String()),
		logger.Duration("age", snapshot.Age(time.Now()).Round(time.Second)))
	return true
}

// Start launches the background worker running the quick then the full
// phase. It returns immediately. The worker is not started when the
// catalog is already usable or after Stop; calling Start again is a no-op.
func (c *Coordinator) Start() {
	c.startOnce.Do(func() {
		if c.stopped.Load() || c.catalog.State() >= domain.QuickIndexed {
			return
		}

		done := make(chan struct{})
		c.workerMu.Lock()
		c.workerDone = done
		c.workerMu.Unlock()

		go c.runWorker(done)
		c.log.Debug("background indexer started")
	})
}

func (c *Coordinator) runWorker(done chan struct{}) {
	defer close(done)

	if err := c.EnsureQuick(c.ctx); err != nil {
		c.logWorkerExit(err)
		return
	}
	if err := c.EnsureFull(c.ctx); err != nil {
		c.logWorkerExit(err)
		return
	}
	c.log.Debug("background indexing finished")
}

func (c *Coordinator) logWorkerExit(err error) {
	if errors.Is(err, ErrStopped) || errors.Is(err, context.Canceled) {
		c.log.Debug("background indexer stopped")
		return
	}
	c.log.Error("background indexing failed", logger.Error(err))
}

// WaitQuick blocks until the catalog is quick indexed, the background
// worker has finished, ctx is done or timeout elapses, whichever comes
// first. It reports whether the catalog is usable.
func (c *Coordinator) WaitQuick(ctx context.Context, timeout time.Duration) bool {
	if c.catalog.State() >= domain.QuickIndexed {
		return true
	}

	c.workerMu.Lock()
	done := c.workerDone
	c.workerMu.Unlock()
	if done == nil {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.quickReady:
	case <-done:
	case <-timer.C:
		c.log.Debug("gave up waiting for background index", logger.Duration("timeout", timeout))
	case <-ctx.Done():
	}

	return c.catalog.State() >= domain.QuickIndexed
}

// EnsureQuick runs the quick phase unless the catalog is already usable.
// Concurrent callers share one build. ctx only bounds the caller's wait;
// the build itself keeps running until Stop.
func (c *Coordinator) EnsureQuick(ctx context.Context) error {
	if c.catalog.State() >= domain.QuickIndexed {
		return nil
	}
	return c.do(ctx, phaseQuick, c.buildQuick)
}

// EnsureFull runs the full phase, preceded by the quick phase when needed.
func (c *Coordinator) EnsureFull(ctx context.Context) error {
	if c.catalog.State() >= domain.FullIndexed {
		return nil
	}
	return c.do(ctx, phaseFull, c.buildFull)
}

func (c *Coordinator) do(ctx context.Context, phase string, build func() error) error {
	if c.stopped.Load() {
		return ErrStopped
	}

	ch := c.builds.DoChan(phase, func() (interface{}, error) {
		return nil, build()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) buildQuick() error {
	if c.catalog.State() >= domain.QuickIndexed {
		return nil
	}
	return c.runPhase(phaseQuick, c.opts.Quick, c.quickSem, c.opts.QuickTimeout, domain.QuickIndexed)
}

func (c *Coordinator) buildFull() error {
	if c.catalog.State() >= domain.FullIndexed {
		return nil
	}
	if err := c.EnsureQuick(c.ctx); err != nil {
		return err
	}
	return c.runPhase(phaseFull, c.opts.Full, c.fullSem, c.opts.FullTimeout, domain.FullIndexed)
}

// runPhase fans the collectors out to the pool, merges what came back after
// the existing catalog and advances the state.
func (c *Coordinator) runPhase(phase string, collectors []collector.Named, pool *semaphore.Weighted, timeout time.Duration, to domain.IndexState) error {
	start := time.Now()
	c.log.Info("index phase started",
		logger.String("phase", phase),
		logger.Int("collectors", len(collectors)))

	results := make([][]*domain.ProgramCandidate, len(collectors))
	var wg sync.WaitGroup

	for i, nc := range collectors {
		wg.Add(1)
		go func(i int, nc collector.Named) {
			defer wg.Done()

			if err := pool.Acquire(c.ctx, 1); err != nil {
				return
			}
			results[i] = c.collect(nc, timeout, func() { pool.Release(1) })
		}(i, nc)
	}
	wg.Wait()

	if c.stopped.Load() {
		return ErrStopped
	}

	var incoming []*domain.ProgramCandidate
	for _, r := range results {
		incoming = append(incoming, r...)
	}

	from := c.catalog.State()
	if c.catalog.MergeAndAdvance(incoming, to) {
		c.recordTransition(from, to)
	}
	c.markQuickReady()

	elapsed := time.Since(start)
	count := c.catalog.Count()
	metrics.ObservePhase(phase, elapsed.Seconds())
	metrics.SetCatalogSize(count)

	c.log.Info("index phase completed",
		logger.String("phase", phase),
		logger.Int("discovered", len(incoming)),
		logger.Int("catalog", count),
		logger.Duration("elapsed", elapsed.Round(time.Millisecond)))

	c.save()
	return nil
}

type collectResult struct {
	raw []domain.RawCandidate
	err error
}

// collect runs one collector with its own timeout. release is called when
// the collector returns, which may be after collect has given up on it.
func (c *Coordinator) collect(nc collector.Named, timeout time.Duration, release func()) []*domain.ProgramCandidate {
	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	done := make(chan collectResult, 1)
	go func() {
		defer release()
		defer func() {
			if r := recover(); r != nil {
				done <- collectResult{err: fmt.Errorf("%w: %v", errCollectorPanic, r)}
			}
		}()
		raw, err := nc.Collector.Collect(ctx)
		done <- collectResult{raw: raw, err: err}
	}()

	var res collectResult
	select {
	case res = <-done:
	case <-ctx.Done():
		if c.ctx.Err() == nil {
			metrics.IncCollectorFailure(nc.Name, metrics.ReasonTimeout)
			c.log.Warn("collector timed out",
				logger.String("collector", nc.Name),
				logger.Duration("timeout", timeout))
		}
		return nil
	}

	switch {
	case res.err == nil:
	case errors.Is(res.err, collector.ErrUnsupported):
		metrics.IncCollectorFailure(nc.Name, metrics.ReasonUnsupported)
		c.log.Debug("collector not supported here", logger.String("collector", nc.Name))
		return nil
	case errors.Is(res.err, errCollectorPanic):
		metrics.IncCollectorFailure(nc.Name, metrics.ReasonPanic)
		c.log.Error("collector failed", logger.String("collector", nc.Name), logger.Error(res.err))
		return nil
	default:
		// Partial results from a failing collector are still kept
		metrics.IncCollectorFailure(nc.Name, metrics.ReasonError)
		c.log.Warn("collector failed",
			logger.String("collector", nc.Name),
			logger.Int("partial", len(res.raw)),
			logger.Error(res.err))
	}

	candidates := c.toCandidates(nc.Source, res.raw)
	metrics.SetCollectorCandidates(nc.Name, len(candidates))
	c.log.Debug("collector finished",
		logger.String("collector", nc.Name),
		logger.Int("candidates", len(candidates)))
	return candidates
}

// toCandidates drops entries without a path and attaches aliases.
func (c *Coordinator) toCandidates(source domain.Source, raw []domain.RawCandidate) []*domain.ProgramCandidate {
	candidates := make([]*domain.ProgramCandidate, 0, len(raw))
	for _, r := range raw {
		path := strings.TrimSpace(r.Path)
		if path == "" {
			continue
		}
		name := strings.TrimSpace(r.Name)
		candidate := &domain.ProgramCandidate{
			DisplayName:    name,
			ExecutablePath: path,
			Source:         source,
			Metadata:       r.Metadata,
		}
		if name == "" {
			names := candidate.AllNames()
			candidate.DisplayName = names[0] // file stem
		}
		candidate.Aliases = c.opts.Aliases.For(candidate.DisplayName, path)
		candidates = append(candidates, candidate)
	}
	return candidates
}

func (c *Coordinator) save() {
	if c.opts.Cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	full := c.catalog.State() >= domain.FullIndexed
	if err := c.opts.Cache.Save(ctx, c.catalog.Snapshot(), full); err != nil {
		c.log.Warn("failed to save cache", logger.Error(err))
	}
}

func (c *Coordinator) recordTransition(from, to domain.IndexState) {
	if from == to {
		return
	}
	metrics.RecordStateTransition(from.String(), to.String())
	c.log.Debug("index state changed",
		logger.String("from", from.String()),
		logger.String("to", to.String()))
}

func (c *Coordinator) markQuickReady() {
	if c.catalog.State() < domain.QuickIndexed {
		return
	}
	c.quickReadyOnce.Do(func() { close(c.quickReady) })
}

// Stop refuses new builds and cancels in-flight ones without waiting for
// their collectors. It is safe to call more than once.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		c.cancel()
		c.log.Debug("indexer stopped")
	})
}
