package config

import (
	"github.com/Maksumys/dbschema/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
databases:
  tag_mysql:
    user: root
    password: secret
    db: app
    path: /srv/migrations/mysql
    pre_migration: SET sql_mode = 'STRICT_ALL_TABLES';
    ssl_ca: /etc/mysql/ca.pem
    ssl_check_hostname: false
  tag_postgresql:
    engine: postgresql
    host: db.internal
    user: postgres
    password: secret
    db: app
    path: /srv/migrations/pg
    transactional: false
    sslmode: require
`

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, []string{"tag_mysql", "tag_postgresql"}, cfg.Tags())

	my := cfg.Databases["tag_mysql"]
	assert.Equal(t, models.EngineMySQL, my.Engine)
	assert.Equal(t, "localhost", my.Host)
	assert.Equal(t, 3306, my.Port)
	assert.Equal(t, "SET sql_mode = 'STRICT_ALL_TABLES';", my.PreMigration)
	assert.True(t, my.IsTransactional())
	ca, ok := my.Option("ssl_ca")
	require.True(t, ok)
	assert.Equal(t, "/etc/mysql/ca.pem", ca)
	check, ok := my.Option("ssl_check_hostname")
	require.True(t, ok)
	assert.Equal(t, "false", check)

	pg := cfg.Databases["tag_postgresql"]
	assert.Equal(t, models.EnginePostgreSQL, pg.Engine)
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, 5432, pg.Port)
	assert.False(t, pg.IsTransactional())
	assert.Equal(t, []string{"sslmode"}, pg.OptionKeys())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "empty", doc: "", wantErr: models.ErrConfig},
		{name: "not-yaml", doc: "databases: [", wantErr: models.ErrConfig},
		{
			name:    "invalid-engine",
			doc:     "databases:\n  x:\n    engine: oracle\n    user: u\n    db: d\n    path: p\n",
			wantErr: models.ErrInvalidEngine,
		},
		{
			name:    "missing-user",
			doc:     "databases:\n  x:\n    db: d\n    path: p\n",
			wantErr: models.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Databases, 2)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.ErrorIs(t, err, models.ErrConfig)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DBSCHEMA_CONFIG", "/etc/dbschema.yml")
	t.Setenv("DBSCHEMA_SKIP_MISSING", "true")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/etc/dbschema.yml", env.ConfigPath)
	assert.True(t, env.SkipMissing)
	assert.Equal(t, "info", env.LogLevel)
	assert.Empty(t, env.Tag)

	t.Setenv("DBSCHEMA_SKIP_MISSING", "sometimes")
	_, err = LoadEnv()
	require.ErrorIs(t, err, models.ErrConfig)
}
