package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesSchema(t *testing.T) {
	ResetDB()
	defer ResetDB()

	conn, err := InitDB(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)

	again, err := InitDB(filepath.Join(t.TempDir(), "other.db"))
	require.NoError(t, err)
	assert.Same(t, conn, again, "InitDB is a singleton")

	var name string
	err = conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='snapshots'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "snapshots", name)
}

func TestNewTestDB(t *testing.T) {
	conn, err := NewTestDB()
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`INSERT INTO snapshots (key, payload) VALUES ('groups', '[]')`)
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrations_RecordSchemaVersion(t *testing.T) {
	conn, err := NewTestDB()
	require.NoError(t, err)
	defer conn.Close()

	version, err := SchemaVersion(conn)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	require.NoError(t, runMigrations(conn), "rerunning is a no-op")

	_, err = conn.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	assert.ErrorContains(t, runMigrations(conn), "newer than this build")
}

func TestInitDB_KeepsFirstError(t *testing.T) {
	ResetDB()
	defer ResetDB()

	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "cache.db")
	_, err := InitDB(missing)
	require.Error(t, err)

	_, again := InitDB(filepath.Join(t.TempDir(), "cache.db"))
	assert.Equal(t, err, again)

	ResetDB()
	conn, err := InitDB(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	assert.NotNil(t, conn)
}
