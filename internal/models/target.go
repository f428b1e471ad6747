package models

import (
	"fmt"
	"sort"
)

// Target описывает одну базу данных из конфигурации: параметры подключения, каталог миграций
// и скрипты, выполняемые до и после миграций.
type Target struct {
	Engine        Engine `yaml:"engine"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Database      string `yaml:"db"`
	Path          string `yaml:"path"`
	PreMigration  string `yaml:"pre_migration"`
	PostMigration string `yaml:"post_migration"`

	// Transactional wraps every script in one transaction. Nil means true.
	Transactional *bool `yaml:"transactional"`

	// Options holds every other key of the descriptor, SSL settings included.
	Options map[string]interface{} `yaml:",inline"`
}

// WithDefaults fills the optional fields of a descriptor.
func (t Target) WithDefaults() Target {
	if t.Engine == "" {
		t.Engine = EngineMySQL
	}
	if t.Host == "" {
		t.Host = "localhost"
	}
	if t.Port == 0 {
		t.Port = t.Engine.DefaultPort()
	}
	return t
}

func (t Target) Validate() error {
	if _, err := ParseEngine(string(t.Engine)); err != nil {
		return err
	}

	var missing []string
	if t.User == "" {
		missing = append(missing, "user")
	}
	if t.Database == "" {
		missing = append(missing, "db")
	}
	if t.Path == "" {
		missing = append(missing, "path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrConfig, missing)
	}

	if t.Port < 0 || t.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrConfig, t.Port)
	}
	return nil
}

func (t Target) IsTransactional() bool {
	return t.Transactional == nil || *t.Transactional
}

// Option returns the string form of an extra descriptor key.
func (t Target) Option(key string) (string, bool) {
	value, ok := t.Options[key]
	if !ok || value == nil {
		return "", false
	}
	return fmt.Sprint(value), true
}

// OptionKeys returns the extra descriptor keys in sorted order.
func (t Target) OptionKeys() []string {
	keys := make([]string, 0, len(t.Options))
	for key := range t.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
