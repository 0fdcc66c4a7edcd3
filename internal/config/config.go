// Package config loads summon settings from defaults, an optional YAML
// file and SUMMON_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName        = "summon"
	ConfigFileName = "config.yaml"
	EnvPrefix      = "SUMMON"

	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Usage   UsageConfig   `mapstructure:"usage"`
	Index   IndexConfig   `mapstructure:"index"`
	Aliases AliasesConfig `mapstructure:"aliases"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	History HistoryConfig `mapstructure:"history"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Pretty bool   `mapstructure:"pretty"` // true => colored console, false => JSON
	File   string `mapstructure:"file"`   // optional rotating log file
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type UsageConfig struct {
	Path string `mapstructure:"path"`
}

type IndexConfig struct {
	Auto         bool          `mapstructure:"auto"`
	Wait         time.Duration `mapstructure:"wait"`
	QuickTimeout time.Duration `mapstructure:"quick_timeout"`
	FullTimeout  time.Duration `mapstructure:"full_timeout"`
	ExtraDirs    []string      `mapstructure:"extra_dirs"`
	ScanDepth    int           `mapstructure:"scan_depth"`
}

type AliasesConfig struct {
	File string `mapstructure:"file"` // empty = no aliases
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "file" | "redis"
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"` // dial + first ping
}

type HistoryConfig struct {
	DSN string `mapstructure:"dsn"` // empty = history disabled
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // empty = no export
}

// LoadOptions controls where Load looks for the config file.
type LoadOptions struct {
	ConfigFile string // explicit file, must exist
	ConfigDir  string // overrides ConfigDir()
}

// ConfigDir returns the summon configuration directory: %APPDATA% on
// Windows, ~/Library/Application Support on macOS and $XDG_CONFIG_HOME
// (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir for callers
func ConfigDir() (string, error) {
	var dir string

	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default:
		dir = os.Getenv("XDG_CONFIG_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			dir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(dir, AppName), nil
}

// DataDir is where the cache, usage stats and history live by default.
func DataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

func setDefaults(v *viper.Viper) {
	data := DataDir()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
	v.SetDefault("log.file", "")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", filepath.Join(data, "program_cache.json"))
	v.SetDefault("cache.ttl", 12*time.Hour)
	v.SetDefault("usage.path", filepath.Join(data, "usage_stats.json"))

	v.SetDefault("index.auto", true)
	v.SetDefault("index.wait", 5*time.Second)
	v.SetDefault("index.quick_timeout", 30*time.Second)
	v.SetDefault("index.full_timeout", 60*time.Second)
	v.SetDefault("index.extra_dirs", []string{})
	v.SetDefault("index.scan_depth", 2)

	v.SetDefault("aliases.file", "")

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", time.Second)

	v.SetDefault("history.dsn", "sqlite://"+filepath.Join(data, "history.db"))
	v.SetDefault("metrics.textfile", "")
}

// Load resolves the configuration.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolveFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Index.ExtraDirs = splitAndTrim(strings.Join(cfg.Index.ExtraDirs, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveFile returns the config file to read, or "" when there is none.
func resolveFile(opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		return opts.ConfigFile, nil
	}

	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", nil
		}
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendFile:
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when store.backend=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q (want %s or %s)", c.Store.Backend, BackendFile, BackendRedis))
	}

	if c.Index.ScanDepth < 0 {
		errs = append(errs, fmt.Errorf("index.scan_depth must be >= 0, got %d", c.Index.ScanDepth))
	}
	if c.Index.Wait < 0 {
		errs = append(errs, fmt.Errorf("index.wait must be >= 0, got %s", c.Index.Wait))
	}
	if c.Cache.Enabled && c.Store.Backend == BackendFile && c.Cache.Path == "" {
		errs = append(errs, errors.New("cache.path is required when the cache is enabled"))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Redis.Password != "" {
		c.Redis.Password = "***REDACTED***"
	}
	if c.Redis.Username != "" {
		c.Redis.Username = "***REDACTED***"
	}
	return c
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
