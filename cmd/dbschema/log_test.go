package main

import (
	"errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"testing"
)

func TestLogrusHandler(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	log := slog.New(newLogrusHandler(logger)).With("run", "42")
	cause := errors.New("boom")

	log.Debug("hidden")
	assert.Empty(t, hook.AllEntries())

	log.WithGroup("ledger").Info("recorded", "migration", "001_init", "rows", 1)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "recorded", entry.Message)
	assert.Equal(t, "42", entry.Data["run"])
	assert.Equal(t, "001_init", entry.Data["ledger.migration"])
	assert.Equal(t, int64(1), entry.Data["ledger.rows"])

	log.Error("database failed", "error", cause, slog.Group("target", "tag", "main"))
	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, cause, entry.Data["error"])
	assert.Equal(t, "main", entry.Data["target.tag"])
	assert.Len(t, hook.AllEntries(), 2)
}

func TestLogrusLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, logrusLevel(slog.LevelDebug))
	assert.Equal(t, logrus.InfoLevel, logrusLevel(slog.LevelInfo))
	assert.Equal(t, logrus.WarnLevel, logrusLevel(slog.LevelWarn+1))
	assert.Equal(t, logrus.ErrorLevel, logrusLevel(slog.LevelError+4))
}
