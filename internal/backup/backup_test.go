package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDB(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE notes (body TEXT); INSERT INTO notes VALUES ('ayubowan')`)
	require.NoError(t, err)
}

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	dbPath := filepath.Join(src, "lankaportal.db")
	seedDB(t, dbPath)
	cfgPath := filepath.Join(src, "lankaportal.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 9000\n"), 0o644))

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	m, err := Backup(ctx, dbPath, cfgPath, archive)
	require.NoError(t, err)
	assert.Equal(t, "lankaportal.db", m.Database)
	assert.Equal(t, "lankaportal.yaml", m.Config)

	dst := t.TempDir()
	restored, err := Restore(ctx, archive, dst, false)
	require.NoError(t, err)
	assert.Equal(t, m.Database, restored.Database)

	db, err := sql.Open("sqlite", filepath.Join(dst, "lankaportal.db"))
	require.NoError(t, err)
	defer db.Close()
	var body string
	require.NoError(t, db.QueryRow(`SELECT body FROM notes`).Scan(&body))
	assert.Equal(t, "ayubowan", body)

	cfg, err := os.ReadFile(filepath.Join(dst, "lankaportal.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "9000")

	// A second restore refuses to overwrite unless forced.
	_, err = Restore(ctx, archive, dst, false)
	assert.ErrorContains(t, err, "-force")
	_, err = Restore(ctx, archive, dst, true)
	assert.NoError(t, err)
}

func TestBackup_MissingDatabase(t *testing.T) {
	_, err := Backup(context.Background(), filepath.Join(t.TempDir(), "nope.db"), "", filepath.Join(t.TempDir(), "out.tar.gz"))
	assert.ErrorContains(t, err, "database file not found")
}

func TestRestore_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	_, err := Restore(context.Background(), path, t.TempDir(), false)
	assert.Error(t, err)
}
