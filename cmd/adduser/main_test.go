package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/isdelr/budget-manager-be/internal/auth"
	"github.com/isdelr/budget-manager-be/internal/database"
	"github.com/isdelr/budget-manager-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "success.db")
	stdout := new(bytes.Buffer)

	args := []string{"-user", "alice", "-email", "alice@example.com", "-password", "secret", "-db", dbPath}
	require.NoError(t, run(args, new(bytes.Buffer), stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "User alice created successfully")

	db, err := database.New(database.DriverSQLite, dbPath)
	require.NoError(t, err)
	defer db.Close()
	user, err := services.NewUserService(db, nil, nil).GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "secret"))
	assert.True(t, user.Budget.IsZero())
}

func TestRun_DuplicateUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "duplicate.db")
	args := []string{"-user", "alice", "-email", "alice@example.com", "-password", "secret", "-db", dbPath}

	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)), "first run should succeed")

	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)

	err := run([]string{"-password", "secret"}, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "interactive.db")
	stdout := new(bytes.Buffer)
	stdin := bytes.NewBufferString("interactive_secret\n")

	args := []string{"-user", "bob", "-email", "bob@example.com", "-db", dbPath}
	require.NoError(t, run(args, stdin, stdout, new(bytes.Buffer)))

	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "User bob created successfully")
}

func TestRun_EmptyPassword(t *testing.T) {
	stdin := bytes.NewBufferString("\n")

	err := run([]string{"-user", "bob", "-email", "bob@example.com"}, stdin, new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password cannot be empty")
}

func TestRun_EnvDefaults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", dbPath)

	args := []string{"-user", "carol", "-email", "carol@example.com", "-password", "secret"}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))
	assert.FileExists(t, dbPath)
}

func TestRun_DotEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "dotenv.db")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DATABASE_DRIVER=sqlite\nDATABASE_URL="+dbPath+"\n"), 0600))
	t.Chdir(dir)
	for _, key := range []string{"DATABASE_DRIVER", "DATABASE_URL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	args := []string{"-user", "erin", "-email", "erin@example.com", "-password", "secret"}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))
	assert.FileExists(t, dbPath)
}

func TestRun_InvalidDBPath(t *testing.T) {
	args := []string{"-user", "dave", "-email", "dave@example.com", "-password", "secret", "-db", t.TempDir()}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestRun_InvalidFlag(t *testing.T) {
	err := run([]string{"-invalid"}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag provided but not defined")
}
