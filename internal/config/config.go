// Package config loads the dbschema configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/Maksumys/dbschema/internal/models"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DefaultFileName is looked up in the user's home directory.
const DefaultFileName = ".dbschema.yml"

// Config is the decoded configuration file.
//
//	databases:
//	  tag_mysql:
//	    engine: mysql
//	    host: localhost
//	    port: 3306
//	    user: root
//	    password: secret
//	    db: app
//	    path: /path/to/migrations/mysql
//	    pre_migration: SET sql_mode = 'STRICT_ALL_TABLES';
//	    ssl_ca: /etc/mysql/ca.pem
type Config struct {
	Databases map[string]models.Target `yaml:"databases"`
}

// DefaultPath returns ~/.dbschema.yml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// Load reads path, or DefaultPath when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: the file `%s` does not exist", models.ErrConfig, path)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrConfig, err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document, applies defaults and validates every target.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", models.ErrConfig, err)
	}
	if len(cfg.Databases) == 0 {
		return nil, fmt.Errorf("%w: no databases configured", models.ErrConfig)
	}

	for tag, target := range cfg.Databases {
		target = target.WithDefaults()
		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("database %s: %w", tag, err)
		}
		cfg.Databases[tag] = target
	}

	return &cfg, nil
}

// Tags returns the configured tags in ascending order.
func (c *Config) Tags() []string {
	tags := make([]string, 0, len(c.Databases))
	for tag := range c.Databases {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
