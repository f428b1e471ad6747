package dbschema

import (
	"context"
	"fmt"
	"github.com/Maksumys/dbschema/internal/repository"
	"github.com/Maksumys/dbschema/internal/statements"
	"gorm.io/gorm"
	"log/slog"
	"strings"
)

const (
	hookPre  = "pre_migration"
	hookPost = "post_migration"
)

// Migrate выполняет невыполненные миграции в порядке имен. Пустой tag означает все
// зарегистрированные базы в порядке тегов; ошибка одной базы не мешает обработке остальных.
//
// Для каждой базы: подключение, pre_migration, сравнение каталога с журналом, выполнение
// миграций с записью в журнал после каждой, post_migration. После ошибки миграции
// оставшиеся миграции базы и post_migration не выполняются, уже записанные остаются в журнале.
func (m *MigrationManager) Migrate(ctx context.Context, tag string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.forEachTarget(ctx, tag, func(log *slog.Logger, tag string, target Target) error {
		skip, err := m.checkMigrationsRoot(log, target)
		if err != nil || skip {
			return err
		}

		log.Info("applying migrations", "db", target.Database, "engine", target.Engine)

		return m.withConnection(ctx, tag, target, func(conn *gorm.DB) error {
			return m.migrateTarget(ctx, log, conn, target)
		})
	})
}

func (m *MigrationManager) migrateTarget(ctx context.Context, log *slog.Logger, conn *gorm.DB, target Target) error {
	if err := m.runHook(log, conn, target, hookPre, target.PreMigration); err != nil {
		return err
	}

	plan, _, err := m.planMigrate(conn, target)
	if err != nil {
		return err
	}

	applied := 0
	for !plan.IsEmpty() {
		if err = ctx.Err(); err != nil {
			return err
		}

		migration := plan.PopFirst()
		if err = m.executeMigration(log, conn, target, migration); err != nil {
			return fmt.Errorf("migration %s: %w", migration.Name, err)
		}
		applied++
	}

	log.Info("migrations applied", "count", applied)

	return m.runHook(log, conn, target, hookPost, target.PostMigration)
}

func (m *MigrationManager) executeMigration(log *slog.Logger, conn *gorm.DB, target Target, migration Migration) error {
	source, err := migration.ReadUp()
	if err != nil {
		return err
	}

	stmts, err := statements.Split(source, target.Engine)
	if err != nil {
		return err
	}

	log.Debug("executing migration", "migration", migration.Name, "statements", len(stmts), "transactional", target.IsTransactional())

	if err = executeStatements(conn, stmts, target.IsTransactional()); err != nil {
		return err
	}

	if err = repository.SaveApplied(conn, migration.Name); err != nil {
		return fmt.Errorf("record applied migration: %w", err)
	}

	log.Info("migration applied", "migration", migration.Name)
	return nil
}

// runHook executes a pre or post migration script configured for the target.
func (m *MigrationManager) runHook(log *slog.Logger, conn *gorm.DB, target Target, hook, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	stmts, err := statements.Split(script, target.Engine)
	if err != nil {
		return fmt.Errorf("%s: %w", hook, err)
	}
	if err = executeStatements(conn, stmts, target.IsTransactional()); err != nil {
		return fmt.Errorf("%s: %w", hook, err)
	}

	log.Debug("hook executed", "hook", hook, "statements", len(stmts))
	return nil
}

// executeStatements runs stmts in order on conn. When transactional is set the statements
// share one transaction committed at the end, otherwise each statement commits on its own.
func executeStatements(conn *gorm.DB, stmts []string, transactional bool) error {
	if !transactional {
		return execEach(conn, stmts)
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		return execEach(tx, stmts)
	})
}

func execEach(db *gorm.DB, stmts []string) error {
	for i, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return newExecutionError(i+1, stmt, err)
		}
	}
	return nil
}
