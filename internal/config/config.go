// Package config holds the immutable run configuration. It is built once
// at startup from an optional YAML file plus command-line flags and passed
// explicitly to every component; nothing reads ambient process state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultKeepDir is the destination used when keep mode is requested
// without an explicit directory.
const DefaultKeepDir = "target"

// DefaultThreads is the hasher worker count when none is configured.
const DefaultThreads = 4

// Config holds all settings for a single run.
type Config struct {
	// Root is the directory tree to scan. Not settable via the config
	// file — it is the command's positional argument.
	Root string `yaml:"-"`

	// KeepDir, when non-empty, switches resolution to keep mode: the
	// survivor of each group is copied there and no source file is
	// deleted. Empty means delete mode.
	KeepDir string `yaml:"keep_dir"`

	Threads  int    `yaml:"threads"`
	LogLevel string `yaml:"log_level"`
}

// applyDefaults fills zero/empty fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.Threads == 0 {
		c.Threads = DefaultThreads
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads and parses the YAML config file at path. A missing file is
// not an error: defaults are returned so the tool works with no config
// file at all.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		var cfg Config
		cfg.applyDefaults()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Validate checks the configuration before any scanning begins.
// Every error returned here is fatal.
func (c *Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	info, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("scan root %q: %w", c.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan root %q is not a directory", c.Root)
	}
	if c.KeepDir != "" {
		if err := os.MkdirAll(c.KeepDir, 0o755); err != nil {
			return fmt.Errorf("create destination %q: %w", c.KeepDir, err)
		}
	}
	return nil
}
