package db

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/quantityfield/internal/fixture"
	"github.com/banshee-data/quantityfield/internal/monitoring"
	"github.com/banshee-data/quantityfield/internal/quantityfield"
	"github.com/banshee-data/quantityfield/internal/units"
)

// setupTestDB creates a migrated database under the test's temp dir.
func setupTestDB(t *testing.T) (*DB, *Store) {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, db.Store()
}

// setupMigrationTestDB opens a database without running any migrations.
func setupMigrationTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func embeddedMigrations(t *testing.T) fs.FS {
	t.Helper()
	m, err := MigrationsFS()
	if err != nil {
		t.Fatalf("MigrationsFS failed: %v", err)
	}
	return m
}

// captureWarnings records runtime warnings for the duration of the test.
func captureWarnings(t *testing.T) *[]string {
	t.Helper()
	var got []string
	previous := monitoring.SetWarner(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetWarner(previous) })
	return &got
}

// mustQuantity unwraps a non-null value.
func mustQuantity(t *testing.T, v quantityfield.Value) units.Quantity {
	t.Helper()
	q, ok := v.Quantity()
	require.True(t, ok, "value is null")
	return q
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check table %s: %v", name, err)
	}
	return exists
}

func fixtureOptions(ignoreNonexistent bool) fixture.Options {
	return fixture.Options{IgnoreNonexistent: ignoreNonexistent}
}
