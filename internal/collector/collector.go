// Package collector discovers launchable programs from independent sources.
//
// Every collector is slow and may fail on its own. The indexer runs them
// concurrently, each with its own timeout, and treats a failure as an
// empty contribution.
package collector

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/summon/internal/domain"
	"github.com/MrSnakeDoc/summon/internal/shell"
)

// ErrUnsupported is returned by collectors that have nothing to offer on
// the current operating system.
var ErrUnsupported = errors.New("collector not supported on this platform")

// Collector reports the programs one source knows about.
type Collector interface {
	Collect(ctx context.Context) ([]domain.RawCandidate, error)
}

// CollectorFunc adapts a plain function to Collector.
type CollectorFunc func(ctx context.Context) ([]domain.RawCandidate, error)

func (f CollectorFunc) Collect(ctx context.Context) ([]domain.RawCandidate, error) {
	return f(ctx)
}

// Named binds a collector to the name used in logs and metrics and to the
// source tag its candidates carry.
type Named struct {
	Name      string
	Source    domain.Source
	Collector Collector
}

// Options tunes the default collector sets.
type Options struct {
	ExtraDirs []string     // scanned in addition to the common install roots
	ScanDepth int          // directory levels below each root, 2 when zero
	Shell     shell.Runner // nil uses shell.DefaultPowerShell
}

func (o Options) runner() shell.Runner {
	if o.Shell != nil {
		return o.Shell
	}
	return shell.DefaultPowerShell()
}

// QuickSet returns the cheap, most useful sources: start menu apps and PATH.
func QuickSet(opts Options) []Named {
	return []Named{
		{Name: "startmenu", Source: domain.SourceStartMenu, Collector: &StartMenu{Shell: opts.runner()}},
		{Name: "path", Source: domain.SourcePath, Collector: NewPathEnv()},
	}
}

// FullSet returns the expensive sources run after the quick phase.
func FullSet(opts Options) []Named {
	roots := append(DefaultRoots(), opts.ExtraDirs...)

	return []Named{
		{Name: "common_paths", Source: domain.SourceScan, Collector: &CommonPaths{Roots: roots, Depth: opts.ScanDepth}},
		{Name: "registry", Source: domain.SourceRegistry, Collector: &Registry{}},
		{Name: "shortcuts", Source: domain.SourceShortcut, Collector: &Shortcuts{Shell: opts.runner(), Dirs: DefaultShortcutDirs()}},
	}
}
