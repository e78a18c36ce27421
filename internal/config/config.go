package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/searcher"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/session"
)

const (
	// EnvConfigPath overrides the config file location
	EnvConfigPath = "REPORTSEARCH_CONFIG"
	// EnvDBPath overrides the database file
	EnvDBPath = "REPORTSEARCH_DB_PATH"
	// EnvWorkers overrides the ingest worker count
	EnvWorkers = "REPORTSEARCH_WORKERS"

	// DefaultDataDir holds the database and config file
	DefaultDataDir = "~/.reportsearch"
	// DefaultDBFile is the database file name inside the data dir
	DefaultDBFile = "reports.db"
	// DefaultConfigFile is the config file name inside the data dir
	DefaultConfigFile = "config.toml"
)

// Config is the complete runtime configuration
type Config struct {
	DBPath  string          `toml:"db_path"`
	Workers int             `toml:"workers"` // 0 means one per CPU
	Search  searcher.Config `toml:"search"`
	Session session.Config  `toml:"session"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DBPath:  filepath.Join(DefaultDataDir, DefaultDBFile),
		Search:  searcher.DefaultConfig(),
		Session: session.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, the config file and the
// environment, in that order. The file named by REPORTSEARCH_CONFIG must
// exist; the default ~/.reportsearch/config.toml is optional.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	required := path != ""
	if !required {
		path = filepath.Join(DefaultDataDir, DefaultConfigFile)
	}

	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a TOML file over the defaults. Keys missing from the file
// keep their default values; unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cfg := Default()
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", expanded, err)
	}
	return cfg, nil
}

// applyEnv applies environment variable overrides
func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		c.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWorkers, v, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate rejects configurations that cannot work
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path must be set")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Session.FetchConcurrency < 0 {
		return fmt.Errorf("session.fetch_concurrency must be >= 0, got %d", c.Session.FetchConcurrency)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

// ResolvedDBPath returns DBPath with a leading ~ expanded
func (c *Config) ResolvedDBPath() (string, error) {
	if c.DBPath == ":memory:" {
		return c.DBPath, nil
	}
	return ExpandHome(c.DBPath)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
