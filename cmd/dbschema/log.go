package main

import (
	"context"
	"github.com/sirupsen/logrus"
	"log/slog"
)

// logrusHandler sends slog records of the library to a logrus logger.
type logrusHandler struct {
	logger *logrus.Logger
	fields logrus.Fields
	prefix string
}

func newLogrusHandler(logger *logrus.Logger) *logrusHandler {
	return &logrusHandler{logger: logger, fields: logrus.Fields{}}
}

func (h *logrusHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsLevelEnabled(logrusLevel(level))
}

func (h *logrusHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make(logrus.Fields, len(h.fields)+record.NumAttrs())
	for key, value := range h.fields {
		fields[key] = value
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.addAttr(fields, h.prefix, attr)
		return true
	})

	entry := h.logger.WithFields(fields)
	if !record.Time.IsZero() {
		entry = entry.WithTime(record.Time)
	}
	entry.Log(logrusLevel(record.Level), record.Message)
	return nil
}

func (h *logrusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, attr := range attrs {
		h.addAttr(clone.fields, clone.prefix, attr)
	}
	return clone
}

func (h *logrusHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.prefix += name + "."
	return clone
}

func (h *logrusHandler) clone() *logrusHandler {
	fields := make(logrus.Fields, len(h.fields))
	for key, value := range h.fields {
		fields[key] = value
	}
	return &logrusHandler{logger: h.logger, fields: fields, prefix: h.prefix}
}

func (h *logrusHandler) addAttr(fields logrus.Fields, prefix string, attr slog.Attr) {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, nested := range value.Group() {
			h.addAttr(fields, prefix, nested)
		}
		return
	}
	if attr.Key == "" {
		return
	}
	fields[prefix+attr.Key] = value.Any()
}

func logrusLevel(level slog.Level) logrus.Level {
	switch {
	case level >= slog.LevelError:
		return logrus.ErrorLevel
	case level >= slog.LevelWarn:
		return logrus.WarnLevel
	case level >= slog.LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}
