// Package config loads installer settings from an optional TOML file.
//
// Every setting has a default, so a missing file is not an error. Values
// from the file replace defaults key by key; command-line flags are applied
// afterwards by the CLI.
//
//	metadata_url = "http://www.simplemachines.org/smf/mirrors.xml"
//	user_agent   = "smfinstall/1.0"
//	http_timeout = "5m"
//	parallel     = 1
//
//	[cache]
//	ttl      = "0s"   # 0 keeps decisions until cleared
//	disabled = false
//
//	[mirror]
//	retries           = 2
//	breaker_threshold = 5    # consecutive failures before a mirror is skipped
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/smfinstall/pkg/catalog"
	"github.com/matzehuels/smfinstall/pkg/errors"
	"github.com/matzehuels/smfinstall/pkg/httputil"
)

// FileName is looked up in the target directory when no path is given.
const FileName = ".smfinstall.toml"

// maxParallel bounds concurrent downloads.
const maxParallel = 16

// Config holds all installer settings.
type Config struct {
	MetadataURL string        `toml:"metadata_url"`
	UserAgent   string        `toml:"user_agent"`
	HTTPTimeout time.Duration `toml:"http_timeout"`
	Parallel    int           `toml:"parallel"`

	Cache  CacheConfig  `toml:"cache"`
	Mirror MirrorConfig `toml:"mirror"`
}

// CacheConfig controls the decision cache.
type CacheConfig struct {
	TTL      time.Duration `toml:"ttl"`
	Disabled bool          `toml:"disabled"`
}

// MirrorConfig controls per-mirror retry and circuit breaking.
type MirrorConfig struct {
	Retries          int   `toml:"retries"`
	BreakerThreshold int64 `toml:"breaker_threshold"` // consecutive failures; 404s do not count
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MetadataURL: catalog.DefaultURL,
		UserAgent:   httputil.DefaultUserAgent,
		HTTPTimeout: 5 * time.Minute,
		Parallel:    1,
		Mirror: MirrorConfig{
			Retries:          2,
			BreakerThreshold: 5,
		},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to load config from %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDir loads FileName from dir if it exists and returns the defaults
// otherwise.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.MetadataURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid metadata_url")
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "user_agent cannot be empty")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.Parallel < 1 || c.Parallel > maxParallel {
		return errors.New(errors.ErrCodeInvalidInput, "parallel must be between 1 and %d, got %d", maxParallel, c.Parallel)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl cannot be negative")
	}
	if c.Mirror.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "mirror.retries must be at least 1")
	}
	if c.Mirror.BreakerThreshold < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "mirror.breaker_threshold must be at least 1")
	}
	return nil
}
