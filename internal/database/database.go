package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"barberia/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver ("pgx")
	"github.com/rs/zerolog"
)

// DB is the relational store for the whole shop.
type DB struct {
	*sql.DB
	dialect dialect
	logger  *zerolog.Logger
}

// Open connects using the configured driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case driverPostgres:
		return NewPostgres(ctx, cfg.Postgres, logger)
	case driverSQLite, "":
		return NewDB(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDB opens (and creates when missing) an embedded sqlite database at path.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", path)
	sqlDB, err := sql.Open(driverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{DB: sqlDB, dialect: dialect{driver: driverSQLite}, logger: logger}
	if err := db.init(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}

	db.logger.Info().Str("driver", driverSQLite).Str("path", path).Msg("Database initialized")
	return db, nil
}

// NewPostgres connects to Postgres through pgx's database/sql adapter.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zerolog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxConnections)
	sqlDB.SetConnMaxIdleTime(30 * time.Second)

	db := &DB{DB: sqlDB, dialect: dialect{driver: driverPostgres}, logger: logger}
	if err := db.init(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	db.logger.Info().Str("driver", driverPostgres).Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("Database initialized")
	return db, nil
}

func (db *DB) init(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Driver reports the underlying driver name.
func (db *DB) Driver() string {
	return db.dialect.driver
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schema {
		query := db.dialect.ddl(stmt)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", strings.TrimSpace(query), err)
		}
	}
	return nil
}

// inTx runs fn inside one transaction at the dialect's isolation level.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, db.dialect.txOptions())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// now is the timestamp stored in created_at/updated_at columns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// placeholders returns "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}
