package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depsize/pkg/cache"
	"github.com/matzehuels/depsize/pkg/errors"
)

// appName is the application name used for config and cache directories.
const appName = "depsize"

// DefaultRepository is the repository consulted when none is configured.
const DefaultRepository = "https://repo1.maven.org/maven2"

// DefaultCacheTTL is how long cached repository responses stay fresh.
const DefaultCacheTTL = 24 * time.Hour

// Config holds the depsize configuration, loaded from an optional TOML
// file and overridden by command-line flags.
//
//	repositories = ["https://repo1.maven.org/maven2"]
//	workers = 8
//	skip_unresolved = false
//
//	[cache]
//	backend = "file"   # file | redis | none
//	ttl = "24h"
//	dir = ""
//
//	[cache.redis]
//	addr = "localhost:6379"
type Config struct {
	Repositories   []string    `toml:"repositories"`
	Workers        int         `toml:"workers"`
	SkipUnresolved bool        `toml:"skip_unresolved"`
	Cache          CacheConfig `toml:"cache"`
}

// CacheConfig selects and configures the response cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"` // file | redis | none
	TTL     string      `toml:"ttl"`     // Go duration string, e.g. "24h"
	Dir     string      `toml:"dir"`     // file backend directory override
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		Repositories: []string{DefaultRepository},
		Workers:      1,
		Cache:        CacheConfig{Backend: "file", TTL: DefaultCacheTTL.String()},
	}
}

// loadConfig reads the TOML config at path. An empty path selects the
// default location (~/.config/depsize/config.toml); a missing file at the
// default location is not an error and yields the defaults.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return defaultConfig(), nil
		}
		path = filepath.Join(home, ".config", appName, "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "config file not found: %s", path)
		}
		return defaultConfig(), nil
	}

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if len(cfg.Repositories) == 0 {
		cfg.Repositories = []string{DefaultRepository}
	}
	return cfg, nil
}

// cacheTTL parses the configured TTL, falling back to the default.
func (c *Config) cacheTTL() time.Duration {
	if c.Cache.TTL == "" {
		return DefaultCacheTTL
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return DefaultCacheTTL
	}
	return d
}

// openCache builds the configured cache backend.
func openCache(ctx context.Context, cfg *Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "", "file":
		dir, err := resolveCacheDir(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (expected file, redis, or none)", cfg.Cache.Backend)
	}
}

// resolveCacheDir returns the effective file-cache directory: the
// configured override when set, the default location otherwise.
func resolveCacheDir(cfg *Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using the XDG convention
// (~/.cache/depsize/).
func cacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
