package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver ("pgx")
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Supported driver names, matching config.DatabaseDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB is a connection pool bound to one SQL dialect. Queries are written with
// "?" placeholders and rebound for Postgres.
type DB struct {
	conn   *sql.DB
	driver string
}

// New creates a new database connection pool.
func New(driver, dataSourceName string) (*DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch driver {
	case DriverSQLite:
		conn, err = sql.Open("sqlite", dataSourceName)
		if err != nil {
			return nil, err
		}
		// One connection keeps ":memory:" databases alive and serializes writers.
		conn.SetMaxOpenConns(1)
		if _, err = conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	case DriverPostgres:
		conn, err = sql.Open("pgx", dataSourceName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn: conn, driver: driver}, nil
}

// Driver returns the dialect this pool talks to.
func (db *DB) Driver() string {
	return db.driver
}

// Close releases database resources.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ExecContext runs a statement that returns no rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.Rebind(query), args...)
}

// QueryContext runs a query returning rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.Rebind(query), args...)
}

// QueryRowContext runs a query expected to return at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.Rebind(query), args...)
}

// Rebind rewrites "?" placeholders into "$n" form for Postgres.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint in either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
