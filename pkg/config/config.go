// Package config loads cddiagram settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/cddiagram/config.toml (falling back to
// ~/.config/cddiagram/config.toml) unless --config names another path. Every
// key is optional; absent keys keep their built-in defaults, and command-line
// flags override both.
//
//	title     = "Release Flow"
//	direction = "TB"
//	format    = "svg"
//	engine    = "embedded"
//	timeout   = "45s"
//	open      = false
//	output    = "docs/diagrams/"
//
//	[cache]
//	enabled = true
//	url     = "redis://localhost:6379/0"
//	ttl     = "24h"
//
//	[serve]
//	addr = "127.0.0.1:8080"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cddiagram/pkg/cache"
	"github.com/matzehuels/cddiagram/pkg/diagram"
	"github.com/matzehuels/cddiagram/pkg/errors"
	"github.com/matzehuels/cddiagram/pkg/pipeline"
	"github.com/matzehuels/cddiagram/pkg/render"
)

const (
	appName  = "cddiagram"
	fileName = "config.toml"

	// DefaultAddr is the preview server listen address.
	DefaultAddr = ":8080"
)

// Config holds every setting that can come from the config file.
type Config struct {
	Title     string        `toml:"title"`
	Direction string        `toml:"direction"`
	Format    string        `toml:"format"`
	Engine    string        `toml:"engine"`
	Timeout   time.Duration `toml:"timeout"`
	Open      bool          `toml:"open"`
	Output    string        `toml:"output"`

	Cache CacheConfig `toml:"cache"`
	Serve ServeConfig `toml:"serve"`
}

// CacheConfig configures the artifact cache.
type CacheConfig struct {
	Enabled bool          `toml:"enabled"`
	Dir     string        `toml:"dir"` // Defaults to $XDG_CACHE_HOME/cddiagram
	URL     string        `toml:"url"` // redis:// URL; takes precedence over Dir
	TTL     time.Duration `toml:"ttl"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Title:     diagram.DefaultTitle,
		Direction: string(diagram.DefaultDirection),
		Format:    string(render.DefaultFormat),
		Engine:    render.DefaultEngine,
		Timeout:   pipeline.DefaultTimeout,
		Open:      true,
		Cache: CacheConfig{
			TTL: cache.TTLArtifact,
		},
		Serve: ServeConfig{
			Addr: DefaultAddr,
		},
	}
}

// DefaultPath returns the config file location following the XDG base
// directory convention.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config file at path on top of Default.
//
// With an empty path the default location is used, and a missing file there
// simply yields the defaults. An explicitly named file must exist. Unknown
// keys and invalid values are INVALID_INPUT errors naming the file.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s does not exist", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s: %s", path, errors.UserMessage(err))
	}
	return cfg, nil
}

// Validate checks every value and canonicalizes names.
func (c *Config) Validate() error {
	opts := pipeline.Options{
		Title:     c.Title,
		Direction: c.Direction,
		Format:    c.Format,
		Engine:    c.Engine,
		Timeout:   c.Timeout,
		Output:    c.Output,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	c.Title = opts.Title
	c.Direction = opts.Direction
	c.Format = opts.Format
	c.Engine = opts.Engine

	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
	return nil
}

// PipelineOptions converts the settings into pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Title:     c.Title,
		Direction: c.Direction,
		Format:    c.Format,
		Engine:    c.Engine,
		Timeout:   c.Timeout,
		Output:    c.Output,
		CacheTTL:  c.Cache.TTL,
	}
}
