// Package config loads tome.yaml and environment overrides into one
// immutable Config that the commands and the server share.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/tomehq/tome/internal/catalog"
)

// DefaultFile is the config file tome looks for in the working directory
// when neither --config nor TOME_CONFIG names one.
const DefaultFile = "tome.yaml"

// EnvConfig is the environment variable naming an alternate config file.
const EnvConfig = "TOME_CONFIG"

// envPrefix is prepended to every override variable (TOME_CATALOG_DIR, ...).
const envPrefix = "TOME_"

// Serve holds the HTTP listener settings.
type Serve struct {
	Addr           string  `yaml:"addr" env:"ADDR"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// Taxonomy lists the vocabularies entries are checked against. Order
// matters for difficulties: earlier means easier.
type Taxonomy struct {
	Categories   []string `yaml:"categories" env:"CATEGORIES"`
	Difficulties []string `yaml:"difficulties" env:"DIFFICULTIES"`
	Languages    []string `yaml:"languages" env:"LANGUAGES"`
}

// Config is the in-memory representation of tome.yaml.
type Config struct {
	CatalogDir string   `yaml:"catalog_dir" env:"CATALOG_DIR"`
	Database   string   `yaml:"database,omitempty" env:"DATABASE"`
	CacheDir   string   `yaml:"cache_dir" env:"CACHE_DIR"`
	Serve      Serve    `yaml:"serve"`
	Taxonomy   Taxonomy `yaml:"taxonomy"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() *Config {
	tax := catalog.DefaultTaxonomy()
	return &Config{
		CatalogDir: "catalog",
		CacheDir:   filepath.Join(".tome", "index"),
		Serve: Serve{
			Addr:           "127.0.0.1:8780",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Taxonomy: Taxonomy{
			Categories:   tax.Categories,
			Difficulties: tax.Difficulties,
			Languages:    tax.Languages,
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file,
// then TOME_* environment variables, later layers winning.
//
// An empty path means "./tome.yaml if it exists"; a named path that does
// not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file: defaults plus environment.
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("cannot parse environment: %w", err)
	}

	for _, p := range []*string{&cfg.CatalogDir, &cfg.Database, &cfg.CacheDir} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}

	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save marshals cfg and writes it to path. Used by tome init.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// CatalogTaxonomy converts the configured vocabularies into the form the
// loader and validator consume.
func (c *Config) CatalogTaxonomy() catalog.Taxonomy {
	return catalog.Taxonomy{
		Categories:   c.Taxonomy.Categories,
		Difficulties: c.Taxonomy.Difficulties,
		Languages:    c.Taxonomy.Languages,
	}
}

func (c *Config) check() error {
	if c.CatalogDir == "" && c.Database == "" {
		return fmt.Errorf("catalog_dir or database must be set")
	}
	if len(c.Taxonomy.Categories) == 0 {
		return fmt.Errorf("taxonomy.categories is empty")
	}
	if len(c.Taxonomy.Difficulties) == 0 {
		return fmt.Errorf("taxonomy.difficulties is empty")
	}
	if len(c.Taxonomy.Languages) == 0 {
		return fmt.Errorf("taxonomy.languages is empty")
	}
	if c.Serve.RateLimitRPS < 0 {
		return fmt.Errorf("serve.rate_limit_rps must not be negative")
	}
	return nil
}
