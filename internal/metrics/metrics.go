// Package metrics records indexing, search and launch activity in
// Prometheus collectors. A short-lived CLI cannot be scraped, so the
// registry is exported to a node_exporter textfile on cleanup.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "summon",
			Subsystem: "index",
			Name:      "phase_duration_seconds",
			Help:      "Wall time of quick and full index phases.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"phase"},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "summon",
			Subsystem: "index",
			Name:      "state_transitions_total",
			Help:      "Number of index state transitions.",
		}, []string{"from", "to"},
	)
	collectorCandidates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "summon",
			Subsystem: "collector",
			Name:      "candidates",
			Help:      "Candidates reported by the last run of each collector.",
		}, []string{"collector"},
	)
	collectorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "summon",
			Subsystem: "collector",
			Name:      "failures_total",
			Help:      "Collector runs that contributed nothing, by reason.",
		}, []string{"collector", "reason"},
	)
	catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "summon",
			Subsystem: "catalog",
			Name:      "candidates",
			Help:      "Candidates currently in the catalog.",
		},
	)
	cacheLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "summon",
			Subsystem: "cache",
			Name:      "loads_total",
			Help:      "Snapshot loads by result (hit or miss).",
		}, []string{"result"},
	)
	searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "summon",
			Subsystem: "engine",
			Name:      "searches_total",
			Help:      "Searches by outcome (match or empty).",
		}, []string{"outcome"},
	)
	launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "summon",
			Subsystem: "engine",
			Name:      "launches_total",
			Help:      "Launch attempts by outcome.",
		}, []string{"outcome"},
	)
)

// Failure reasons for IncCollectorFailure.
const (
	ReasonError       = "error"
	ReasonTimeout     = "timeout"
	ReasonPanic       = "panic"
	ReasonUnsupported = "unsupported"
)

// Launch outcomes for IncLaunch.
const (
	LaunchSuccess  = "success"
	LaunchNotFound = "not_found"
	LaunchFailed   = "failed"
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{phaseDuration, stateTransitions, collectorCandidates, collectorFailures, catalogSize, cacheLoads, searches, launches}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func ObservePhase(phase string, seconds float64) {
	if regOK.Load() {
		phaseDuration.WithLabelValues(phase).Observe(seconds)
	}
}

func RecordStateTransition(from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(from, to).Inc()
	}
}

func SetCollectorCandidates(collector string, n int) {
	if regOK.Load() {
		collectorCandidates.WithLabelValues(collector).Set(float64(n))
	}
}

func IncCollectorFailure(collector, reason string) {
	if regOK.Load() {
		collectorFailures.WithLabelValues(collector, reason).Inc()
	}
}

func SetCatalogSize(n int) {
	if regOK.Load() {
		catalogSize.Set(float64(n))
	}
}

func IncCacheLoad(hit bool) {
	if regOK.Load() {
		result := "miss"
		if hit {
			result = "hit"
		}
		cacheLoads.WithLabelValues(result).Inc()
	}
}

func IncSearch(found bool) {
	if regOK.Load() {
		outcome := "empty"
		if found {
			outcome = "match"
		}
		searches.WithLabelValues(outcome).Inc()
	}
}

func IncLaunch(outcome string) {
	if regOK.Load() {
		launches.WithLabelValues(outcome).Inc()
	}
}
