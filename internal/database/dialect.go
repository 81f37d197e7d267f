package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"
)

// dialect hides the few places where Postgres and sqlite disagree.
// Queries always use $n placeholders numbered in order of first appearance,
// which sqlite binds by ordinal.
type dialect struct {
	driver string
}

// forUpdate is the row-lock suffix. sqlite serializes writers with
// BEGIN IMMEDIATE instead.
func (d dialect) forUpdate() string {
	if d.driver == driverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

func (d dialect) txOptions() *sql.TxOptions {
	if d.driver == driverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}

func (d dialect) ddl(stmt string) string {
	if d.driver == driverPostgres {
		return strings.NewReplacer(
			"{{autoid}}", "BIGSERIAL PRIMARY KEY",
			"{{timestamp}}", "TIMESTAMPTZ",
		).Replace(stmt)
	}
	return strings.NewReplacer(
		"{{autoid}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{timestamp}}", "TIMESTAMP",
	).Replace(stmt)
}

// isSerializationFailure reports errors a concurrent writer caused.
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
