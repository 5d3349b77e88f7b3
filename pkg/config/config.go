// Package config loads the cratemap configuration file.
//
// Configuration is TOML, looked up from an explicit --config path or from
// the user config directory (~/.config/cratemap/config.toml on Linux):
//
//	[registry]
//	base_url   = "https://crates.io"
//	user_agent = ""
//	timeout    = "30s"
//
//	[cache]
//	backend    = "file"    # file | redis | mongo | none
//	dir        = ""
//	ttl        = "24h"
//	redis_addr = "localhost:6379"
//	mongo_uri  = ""
//
// Every key is optional; missing keys keep their defaults. Unknown keys are
// ignored.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cratemap/pkg/errors"
)

// Cache backend names accepted in [cache].backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the full application configuration.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Cache    CacheConfig    `toml:"cache"`
}

// RegistryConfig controls the crates.io client.
type RegistryConfig struct {
	BaseURL   string   `toml:"base_url"`
	UserAgent string   `toml:"user_agent"` // empty means derived from buildinfo
	Timeout   Duration `toml:"timeout"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"` // empty means the user cache dir
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	MongoURI  string   `toml:"mongo_uri"`
}

// Duration is a time.Duration that unmarshals from TOML strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			BaseURL: "https://crates.io",
			Timeout: Duration{30 * time.Second},
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       Duration{24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
	}
}

// DefaultPath returns the default config file location for the current user.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cratemap", "config.toml"), nil
}

// Load reads the configuration from path. An empty path means the default
// location; a missing file there is not an error and yields Default().
// An explicitly given path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "config file not found: %s", path)
		}
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendMongo, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (expected file, redis, mongo or none)", c.Cache.Backend)
	}
	if c.Registry.BaseURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "registry base_url cannot be empty")
	}
	return nil
}
