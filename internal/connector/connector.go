// Package connector opens a gorm session for a configured target. The engine decides the
// dialector and which SSL keys of the descriptor are honoured.
package connector

import (
	"context"
	"errors"
	"fmt"
	"github.com/Maksumys/dbschema/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"log/slog"
	"time"
)

var ErrConnection = errors.New("connection failed")

// dialect is implemented by every supported engine.
type dialect interface {
	// sslKeys lists the descriptor keys the engine understands as SSL settings.
	sslKeys() []string
	dialector(tag string, target models.Target) (gorm.Dialector, []string, error)
}

func dialectFor(engine models.Engine) (dialect, error) {
	switch engine {
	case models.EngineMySQL:
		return mysqlDialect{}, nil
	case models.EnginePostgreSQL:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidEngine, engine)
	}
}

// SSLOptions returns the SSL settings of target that apply to its engine.
func SSLOptions(target models.Target) (map[string]string, error) {
	d, err := dialectFor(target.Engine)
	if err != nil {
		return nil, err
	}

	ssl := make(map[string]string)
	for _, key := range d.sslKeys() {
		if value, ok := target.Option(key); ok {
			ssl[key] = value
		}
	}
	return ssl, nil
}

// Open подключается к базе цели. Ошибки подключения оборачиваются в ErrConnection,
// неизвестный движок возвращает models.ErrInvalidEngine.
func Open(ctx context.Context, tag string, target models.Target, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}

	d, err := dialectFor(target.Engine)
	if err != nil {
		return nil, err
	}

	dialector, ignored, err := d.dialector(tag, target)
	if err != nil {
		return nil, err
	}
	for _, key := range ignored {
		log.Warn("ssl option is not supported by the driver, ignoring", "tag", tag, "engine", target.Engine, "option", key)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: logger.New(slog.NewLogLogger(log.Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             5 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s on %s:%d): %v", ErrConnection, tag, target.Engine, target.Host, target.Port, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnection, tag, err)
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %s (%s on %s:%d): %v", ErrConnection, tag, target.Engine, target.Host, target.Port, err)
	}

	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
