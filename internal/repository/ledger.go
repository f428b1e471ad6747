package repository

import (
	"fmt"
	"github.com/Maksumys/dbschema/internal/models"
	"gorm.io/gorm"
)

// ListApplied читает журнал выполненных миграций. Порядок строк не важен,
// значимо только множество имен.
func ListApplied(db *gorm.DB) ([]models.AppliedMigration, error) {
	if !HasLedgerTable(db) {
		return nil, ErrMissingLedgerTable
	}

	var rows []models.AppliedMigration
	if err := db.Find(&rows).Error; err != nil {
		if isUndefinedTable(err) {
			return nil, ErrMissingLedgerTable
		}
		return nil, err
	}

	return rows, nil
}

// AppliedSet indexes ledger rows by migration name.
func AppliedSet(rows []models.AppliedMigration) map[string]struct{} {
	set := make(map[string]struct{}, len(rows))
	for i := range rows {
		set[rows[i].Name] = struct{}{}
	}
	return set
}

// SaveApplied записывает миграцию как выполненную; время проставляет сервер.
func SaveApplied(db *gorm.DB, name string) error {
	var count int64
	err := db.Model(&models.AppliedMigration{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		if isUndefinedTable(err) {
			return ErrMissingLedgerTable
		}
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	err = db.Exec("INSERT INTO "+models.LedgerTable+" (name, date) VALUES (?, CURRENT_TIMESTAMP)", name).Error
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	case isUndefinedTable(err):
		return ErrMissingLedgerTable
	default:
		return err
	}
}

// DeleteApplied removes the ledger row of name. The caller checks membership first,
// a missing row is reported as ErrNotFound.
func DeleteApplied(db *gorm.DB, name string) error {
	res := db.Where("name = ?", name).Delete(&models.AppliedMigration{})
	if res.Error != nil {
		if isUndefinedTable(res.Error) {
			return ErrMissingLedgerTable
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func HasLedgerTable(db *gorm.DB) bool {
	return db.Migrator().HasTable(models.LedgerTable)
}

// CreateLedgerTable создает таблицу журнала. Вызывается только явной командой init,
// применение миграций таблицу не создает.
func CreateLedgerTable(db *gorm.DB) error {
	var ddl string
	switch db.Dialector.Name() {
	case "postgres":
		ddl = `
			CREATE TABLE IF NOT EXISTS migrations_applied (
				id SERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "mysql":
		ddl = `
			CREATE TABLE IF NOT EXISTS migrations_applied (
				id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
	default:
		ddl = `
			CREATE TABLE IF NOT EXISTS migrations_applied (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
	}
	return db.Exec(ddl).Error
}
