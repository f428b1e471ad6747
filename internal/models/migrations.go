package models

// LedgerTable хранит имена выполненных миграций. Имя таблицы и колонка date фиксированы,
// существующие журналы читаются без изменения схемы.
const LedgerTable = "migrations_applied"

type AppliedMigration struct {
	Id        uint32     `gorm:"primaryKey"`
	Name      string     `gorm:"uniqueIndex"`
	AppliedAt CustomTime `gorm:"column:date"`
}

func (v AppliedMigration) TableName() string {
	return LedgerTable
}
