package db

import (
	"testing"
)

func TestMigrateUp(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := embeddedMigrations(t)

	if err := db.MigrateUp(migrationsFS); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 3 {
		t.Errorf("expected version 3, got %d", version)
	}
	if dirty {
		t.Error("database should not be dirty after successful migration")
	}

	for _, name := range []string{"hay_bales", "nullable_bales_decimal", "custom_bales", "custom_decimal_bales"} {
		if !tableExists(t, db, name) {
			t.Errorf("%s should exist after migration", name)
		}
	}
}

func TestMigrateUp_Idempotency(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := embeddedMigrations(t)

	if err := db.MigrateUp(migrationsFS); err != nil {
		t.Fatalf("first MigrateUp failed: %v", err)
	}
	if err := db.MigrateUp(migrationsFS); err != nil {
		t.Fatalf("second MigrateUp failed: %v", err)
	}

	version, _, err := db.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 3 {
		t.Errorf("expected version 3 after idempotent up, got %d", version)
	}
}

func TestMigrateDown(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := embeddedMigrations(t)

	if err := db.MigrateUp(migrationsFS); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	if err := db.MigrateDown(migrationsFS); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2 after down migration, got %d", version)
	}
	if dirty {
		t.Error("database should not be dirty after successful down migration")
	}
	if tableExists(t, db, "custom_bales") {
		t.Error("custom_bales should not exist after rolling back the last migration")
	}
	if !tableExists(t, db, "hay_bales") {
		t.Error("hay_bales should survive rolling back the last migration")
	}
}

func TestMigrateTo(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := embeddedMigrations(t)

	if err := db.MigrateTo(migrationsFS, 1); err != nil {
		t.Fatalf("MigrateTo(1) failed: %v", err)
	}
	if !tableExists(t, db, "hay_bales") || tableExists(t, db, "nullable_bales_float") {
		t.Error("only the first migration should be applied")
	}

	if err := db.MigrateTo(migrationsFS, 3); err != nil {
		t.Fatalf("MigrateTo(3) failed: %v", err)
	}
	version, _, err := db.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 3 {
		t.Errorf("expected version 3, got %d", version)
	}
}

func TestMigrateForce(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := embeddedMigrations(t)

	if err := db.MigrateUp(migrationsFS); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	if err := db.MigrateForce(migrationsFS, 2); err != nil {
		t.Fatalf("MigrateForce failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("expected clean version 2, got %d (dirty=%v)", version, dirty)
	}
	// Force only moves the recorded version.
	if !tableExists(t, db, "custom_bales") {
		t.Error("custom_bales should still exist after forcing the version")
	}
}

func TestMigrateVersion_NoMigrations(t *testing.T) {
	db := setupMigrationTestDB(t)

	version, dirty, err := db.MigrateVersion(embeddedMigrations(t))
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("expected 0/false on a fresh database, got %d/%v", version, dirty)
	}
}

func TestGetMigrationStatus(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := embeddedMigrations(t)

	status, err := db.GetMigrationStatus(migrationsFS)
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if status.SchemaMigrationsExists {
		t.Error("schema_migrations should not exist on a fresh database")
	}
	if status.CurrentVersion != 0 || status.LatestVersion != 3 || !status.Pending() {
		t.Errorf("unexpected fresh status: %+v", status)
	}

	if err := db.MigrateUp(migrationsFS); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	status, err = db.GetMigrationStatus(migrationsFS)
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if !status.SchemaMigrationsExists || status.CurrentVersion != 3 || status.Pending() {
		t.Errorf("unexpected migrated status: %+v", status)
	}
}

func TestLatestMigrationVersion(t *testing.T) {
	latest, err := LatestMigrationVersion(embeddedMigrations(t))
	if err != nil {
		t.Fatalf("LatestMigrationVersion failed: %v", err)
	}
	if latest != 3 {
		t.Errorf("expected latest version 3, got %d", latest)
	}
}

func TestNewMigrate_NilFS(t *testing.T) {
	db := setupMigrationTestDB(t)
	if err := db.MigrateUp(nil); err == nil {
		t.Error("expected an error without a migrations filesystem")
	}
}
