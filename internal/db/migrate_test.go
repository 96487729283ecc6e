package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateUpDown(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp("migrations"); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	version, dirty, err := db.MigrateVersion("migrations")
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Fatal("database marked dirty after MigrateUp")
	}
	if version == 0 {
		t.Fatal("version = 0 after MigrateUp, want latest")
	}

	// Up again is a no-op.
	if err := db.MigrateUp("migrations"); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}

	if err := db.MigrateDown("migrations"); err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}
	downVersion, dirty, err := db.MigrateVersion("migrations")
	if err != nil {
		t.Fatalf("MigrateVersion after down: %v", err)
	}
	if dirty {
		t.Fatal("database marked dirty after MigrateDown")
	}
	if downVersion >= version {
		t.Errorf("version after down = %d, want below %d", downVersion, version)
	}
}

// The migrated schema must still accept the recorder's inserts.
func TestMigratedSchemaAcceptsRecords(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp("migrations"); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	run, err := db.StartRun("test", "map.csv")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := run.RecordCycle(record(1, 1, false)); err != nil {
		t.Fatalf("RecordCycle: %v", err)
	}

	cycles, err := db.RecentCycles(run.ID, 10)
	if err != nil {
		t.Fatalf("RecentCycles: %v", err)
	}
	if len(cycles) != 1 {
		t.Errorf("got %d cycles, want 1", len(cycles))
	}
}
