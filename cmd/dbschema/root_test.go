package main

import (
	"bytes"
	"github.com/Maksumys/dbschema"
	"github.com/Maksumys/dbschema/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFileName)
	document := "databases:\n" +
		"  main:\n" +
		"    engine: postgresql\n" +
		"    user: admin\n" +
		"    db: app\n" +
		"    path: " + filepath.Join(dir, "absent") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))
	return path
}

func execute(t *testing.T, env *config.Env, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(env)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	path := writeConfig(t)
	env := &config.Env{LogLevel: "info"}

	t.Run("missing folder fails", func(t *testing.T) {
		_, err := execute(t, env, "-c", path)
		assert.ErrorIs(t, err, dbschema.ErrNotFound)
	})

	t.Run("skip missing", func(t *testing.T) {
		_, err := execute(t, env, "-c", path, "-s")
		assert.NoError(t, err)
	})

	t.Run("underscore flag spelling", func(t *testing.T) {
		_, err := execute(t, env, "--config", path, "--skip_missing")
		assert.NoError(t, err)
	})

	t.Run("skip missing from environment", func(t *testing.T) {
		_, err := execute(t, &config.Env{LogLevel: "info", SkipMissing: true, ConfigPath: path})
		assert.NoError(t, err)
	})

	t.Run("rollback requires a tag", func(t *testing.T) {
		_, err := execute(t, env, "-c", path, "-r", "001_init")
		assert.ErrorIs(t, err, dbschema.ErrConfig)
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := execute(t, env, "-c", path, "-t", "other")
		assert.ErrorIs(t, err, dbschema.ErrConfig)
	})

	t.Run("missing configuration", func(t *testing.T) {
		_, err := execute(t, env, "-c", filepath.Join(t.TempDir(), "none.yml"))
		assert.ErrorIs(t, err, dbschema.ErrConfig)
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := execute(t, env, "-c", path, "--log-level", "loud")
		assert.ErrorIs(t, err, dbschema.ErrConfig)
	})
}

func TestStatusCommand_Skipped(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, &config.Env{LogLevel: "info"}, "status", "-c", path, "--skip-missing")
	require.NoError(t, err)
	assert.Contains(t, out, "main: skipped")
}
