package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/summon/internal/collector"
	"github.com/MrSnakeDoc/summon/internal/config"
	"github.com/MrSnakeDoc/summon/internal/engine"
	"github.com/MrSnakeDoc/summon/internal/history"
	"github.com/MrSnakeDoc/summon/internal/history/sqlite"
	"github.com/MrSnakeDoc/summon/internal/launcher"
	"github.com/MrSnakeDoc/summon/internal/logger"
	"github.com/MrSnakeDoc/summon/internal/metrics"
	"github.com/MrSnakeDoc/summon/internal/phonetic"
	"github.com/MrSnakeDoc/summon/internal/shell"
	"github.com/MrSnakeDoc/summon/internal/sources/aliases"
	"github.com/MrSnakeDoc/summon/internal/store"
	"github.com/MrSnakeDoc/summon/internal/store/file"
	redisstore "github.com/MrSnakeDoc/summon/internal/store/redis"
	"github.com/MrSnakeDoc/summon/internal/utils"
	"github.com/MrSnakeDoc/summon/internal/version"
)

// Options are the command-line overrides applied on top of the config.
type Options struct {
	ConfigFile  string
	LogLevel    string // overrides log.level when set
	NoCache     bool   // disables snapshots and usage persistence
	NoAutoIndex bool   // never start the background indexer
	Rebuild     bool   // skip the stored snapshot, the next build replaces it
}

type App struct {
	cfg        *config.Config
	logger     logger.Logger
	engine     *engine.Engine
	redisStore *redisstore.Store
	cacheFiles []string
}

// New loads the configuration and wires the engine. It never blocks on
// collectors; a configured but unreachable Redis falls back to files.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.ConfigFile})
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.NoCache {
		cfg.Cache.Enabled = false
	}
	if opts.NoAutoIndex || opts.Rebuild {
		cfg.Index.Auto = false
	}

	loggerClient := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		File:   cfg.Log.File,
	})
	if cfg.Log.Level == "debug" {
		loggerClient.Debugf("cfg: %+v", cfg.Redacted())
	}
	loggerClient.Debug("summon starting",
		logger.String("version", version.Version),
		logger.String("commit", version.Commit),
		logger.String("go", version.GoVersion))

	a := &App{cfg: cfg, logger: loggerClient}

	cacheBlob, usageBlob := a.blobs(ctx)

	table, err := aliases.Load(cfg.Aliases.File)
	if err != nil {
		loggerClient.Warn("failed to load aliases, continuing without them",
			logger.String("file", cfg.Aliases.File), logger.Error(err))
		table = nil
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Textfile != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			loggerClient.Warn("failed to register metrics", logger.Error(err))
		} else {
			gatherer = reg
		}
	}

	runner := shell.DefaultPowerShell()
	collectorOpts := collector.Options{
		ExtraDirs: cfg.Index.ExtraDirs,
		ScanDepth: cfg.Index.ScanDepth,
		Shell:     runner,
	}

	a.engine = engine.New(ctx, engine.Options{
		Quick:           collector.QuickSet(collectorOpts),
		Full:            collector.FullSet(collectorOpts),
		QuickTimeout:    cfg.Index.QuickTimeout,
		FullTimeout:     cfg.Index.FullTimeout,
		CacheEnabled:    cfg.Cache.Enabled,
		CacheBlob:       cacheBlob,
		CacheTTL:        cfg.Cache.TTL,
		UsageBlob:       usageBlob,
		Rebuild:         opts.Rebuild,
		AutoIndex:       cfg.Index.Auto,
		IndexWait:       cfg.Index.Wait,
		Phonetic:        phonetic.NewPinyin(),
		Aliases:         table,
		Launcher:        launcher.New(runner),
		History:         a.history(),
		MetricsTextfile: cfg.Metrics.Textfile,
		Gatherer:        gatherer,
		Log:             loggerClient,
	})

	return a, nil
}

// blobs picks the persistence backend for the snapshot and usage stats.
func (a *App) blobs(ctx context.Context) (store.Blob, store.Blob) {
	if a.cfg.Store.Backend == config.BackendRedis {
		rs, err := redisstore.Dial(ctx, redisstore.DialOptions{
			Addr:     a.cfg.Redis.Addr,
			Username: a.cfg.Redis.Username,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			Timeout:  a.cfg.Redis.DialTimeout,
		}, a.logger)
		if err == nil {
			a.redisStore = rs
			return rs.Blob(redisstore.KeySnapshot, a.cfg.Cache.TTL),
				rs.Blob(redisstore.KeyUsage, 0)
		}
		a.logger.Warn("redis unavailable, using local files", logger.Error(err))
	}

	a.cacheFiles = []string{a.cfg.Cache.Path, a.cfg.Usage.Path}
	return file.NewBlob(a.cfg.Cache.Path), file.NewBlob(a.cfg.Usage.Path)
}

func (a *App) history() history.Sink {
	dsn := strings.TrimSpace(a.cfg.History.DSN)
	if dsn == "" {
		return nil
	}

	if path := strings.TrimPrefix(dsn, "sqlite://"); !strings.Contains(path, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			a.logger.Warn("failed to create history dir", logger.Error(err))
			return nil
		}
	}

	sink, err := sqlite.New(dsn)
	if err != nil {
		a.logger.Warn("launch history disabled", logger.Error(err))
		return nil
	}
	return sink
}

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Engine() *engine.Engine { return a.engine }

func (a *App) Logger() logger.Logger { return a.logger }

// Purge drops the persisted snapshot and usage stats.
func (a *App) Purge(ctx context.Context) error {
	if a.redisStore != nil {
		if err := a.redisStore.Flush(ctx); err != nil {
			return fmt.Errorf("failed to flush redis: %w", err)
		}
		return nil
	}

	for _, path := range a.cacheFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

// Close releases everything New acquired.
func (a *App) Close() {
	a.engine.Cleanup()

	if a.redisStore != nil {
		utils.MustClose(a.redisStore, a.logger)
	}
	_ = a.logger.Sync()
}
