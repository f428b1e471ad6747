package config

import (
	"fmt"
	"github.com/Maksumys/dbschema/internal/models"
	"github.com/kelseyhightower/envconfig"
)

// Env holds the environment overrides of command line defaults.
type Env struct {
	ConfigPath  string `envconfig:"DBSCHEMA_CONFIG"`
	Tag         string `envconfig:"DBSCHEMA_TAG"`
	SkipMissing bool   `envconfig:"DBSCHEMA_SKIP_MISSING"`
	LogLevel    string `envconfig:"DBSCHEMA_LOG_LEVEL" default:"info"`
}

func LoadEnv() (*Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrConfig, err)
	}
	return &e, nil
}
