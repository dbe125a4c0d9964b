// Package config loads the aliasq command configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mickamy/aliasq/meta"
	"github.com/mickamy/aliasq/orm"
)

// Config is the YAML document read by the aliasq command.
//
//	driver: mysql
//	dsn: ${ALIASQ_DSN}
//	pool: {maxOpenConns: 4, pingTimeout: 3s}
//	models: ./model/blog.go
//	entities: [...]
type Config struct {
	Driver   string        `yaml:"driver"`
	DSN      string        `yaml:"dsn"`
	Pool     orm.Options   `yaml:"pool"`
	Debug    bool          `yaml:"debug"`
	Models   string        `yaml:"models"`
	Entities []meta.Entity `yaml:"entities"`
}

// Load reads the file at path. A relative Models path is resolved against
// the directory of the file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.Models != "" && !filepath.IsAbs(cfg.Models) {
		cfg.Models = filepath.Join(filepath.Dir(path), cfg.Models)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Unknown keys are rejected and
// ${VAR} references in the DSN are expanded from the environment.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{Pool: orm.DefaultOptions()}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	cfg.DSN = os.ExpandEnv(cfg.DSN)
	return cfg, nil
}

// Dialect returns the SQL dialect of the configured driver.
func (c *Config) Dialect() (orm.Dialect, error) {
	if c.Driver == "" {
		return nil, errors.New("config: driver is required")
	}
	return orm.DialectFor(c.Driver) //nolint:wrapcheck // already prefixed
}

// Registry builds the entity registry from the models file followed by the
// inline entities.
func (c *Config) Registry() (*meta.Registry, error) {
	var entities []meta.Entity
	if c.Models != "" {
		parsed, err := meta.ParseFile(c.Models)
		if err != nil {
			return nil, fmt.Errorf("config: models: %w", err)
		}
		entities = append(entities, parsed...)
	}
	entities = append(entities, c.Entities...)
	if len(entities) == 0 {
		return nil, errors.New("config: no entities defined (set models or entities)")
	}

	reg, err := meta.NewRegistry(entities...)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return reg, nil
}
