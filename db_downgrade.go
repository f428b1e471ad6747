package dbschema

import (
	"context"
	"fmt"
	"github.com/Maksumys/dbschema/internal/repository"
	"github.com/Maksumys/dbschema/internal/statements"
	"gorm.io/gorm"
	"log/slog"
)

// Rollback откатывает одну выполненную миграцию базы tag: выполняет ее down.sql и удаляет
// запись из журнала. Перед изменением журнал перечитывается; если миграция не выполнялась,
// возвращается ErrNotApplied и журнал не меняется.
func (m *MigrationManager) Rollback(ctx context.Context, tag string, name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if tag == "" {
		return fmt.Errorf("%w: to rollback a migration you need to specify the database tag", ErrConfig)
	}
	if name == "" {
		return fmt.Errorf("%w: empty migration name", ErrConfig)
	}

	return m.forEachTarget(ctx, tag, func(log *slog.Logger, tag string, target Target) error {
		skip, err := m.checkMigrationsRoot(log, target)
		if err != nil || skip {
			return err
		}

		log.Info("rolling back", "db", target.Database, "engine", target.Engine, "migration", name)

		return m.withConnection(ctx, tag, target, func(conn *gorm.DB) error {
			if err := m.runHook(log, conn, target, hookPre, target.PreMigration); err != nil {
				return err
			}

			migration, err := m.planDowngrade(conn, target, name)
			if err != nil {
				return err
			}

			if err = m.executeDowngrade(log, conn, target, migration); err != nil {
				return fmt.Errorf("migration %s: %w", migration.Name, err)
			}

			return m.runHook(log, conn, target, hookPost, target.PostMigration)
		})
	})
}

func (m *MigrationManager) executeDowngrade(log *slog.Logger, conn *gorm.DB, target Target, migration Migration) error {
	source, err := migration.ReadDown()
	if err != nil {
		return err
	}

	stmts, err := statements.Split(source, target.Engine)
	if err != nil {
		return err
	}

	if err = executeStatements(conn, stmts, target.IsTransactional()); err != nil {
		return err
	}

	if err = repository.DeleteApplied(conn, migration.Name); err != nil {
		return fmt.Errorf("remove applied migration: %w", err)
	}

	log.Info("migration has been rolled back", "migration", migration.Name)
	return nil
}
