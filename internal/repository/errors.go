package repository

import (
	"errors"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"strconv"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("migration already recorded")
	ErrMissingLedgerTable = errors.New("the table `migrations_applied` is missing, create it with `dbschema init` or refer to the project documentation")
)

const (
	pgUniqueViolation    = "23505"
	pgUndefinedTable     = "42P01"
	mysqlDuplicateEntry  = "1062"
	mysqlNoSuchTable     = "1146"
	sqliteNoSuchTable    = "no such table"
	sqliteUniqueConstrnt = "UNIQUE constraint failed"
)

// ErrorCode returns the server error code carried by err: SQLSTATE for PostgreSQL,
// the error number for MySQL. Empty when the driver did not report one.
func ErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return strconv.Itoa(int(mysqlErr.Number))
	}

	return ""
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	switch ErrorCode(err) {
	case pgUniqueViolation, mysqlDuplicateEntry:
		return true
	}
	return strings.Contains(err.Error(), sqliteUniqueConstrnt)
}

func isUndefinedTable(err error) bool {
	switch ErrorCode(err) {
	case pgUndefinedTable, mysqlNoSuchTable:
		return true
	}
	return strings.Contains(err.Error(), sqliteNoSuchTable)
}
