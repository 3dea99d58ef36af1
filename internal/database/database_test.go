package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(DriverSQLite, ":memory:")
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New("mysql", "root@/budget")
	assert.Error(t, err)
}

func TestMigrateCreatesSchema(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "expenses", "activity", migrationTable} {
		assert.True(t, tableExists(t, db, table), "expected table %s", table)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+migrationTable).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestApplyMigrationsSkipsEmptyUpSection(t *testing.T) {
	db := openTestDB(t)
	migrations := fstest.MapFS{
		"001_noop.sql":   {Data: []byte("-- +migrate Up\n\n-- +migrate Down\nDROP TABLE items;")},
		"002_create.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE items (id INTEGER PRIMARY KEY);")},
		"README.md":      {Data: []byte("not a migration")},
	}

	require.NoError(t, applyMigrations(context.Background(), db, migrations, "."))
	assert.True(t, tableExists(t, db, "items"))
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	_, err := db.ExecContext(context.Background(),
		"INSERT INTO expenses (user_id, name, category, amount) VALUES (?, ?, ?, ?)", 999, "Lunch", "food", "10")
	assert.Error(t, err, "expense without an owner must be rejected")
}

func TestIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	ctx := context.Background()

	insert := "INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)"
	_, err := db.ExecContext(ctx, insert, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "bob", "alice@example.com", "hash")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t,
		"UPDATE users SET budget = $1 WHERE id = $2",
		pg.Rebind("UPDATE users SET budget = ? WHERE id = ?"))

	lite := &DB{driver: DriverSQLite}
	assert.Equal(t, "SELECT 1 WHERE a = ?", lite.Rebind("SELECT 1 WHERE a = ?"))
}

func TestExtractUp(t *testing.T) {
	assert.Equal(t, "\nCREATE TABLE a (id INT);\n", extractUp("-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;"))
	assert.Equal(t, "CREATE TABLE b (id INT);", extractUp("CREATE TABLE b (id INT);"))
}
