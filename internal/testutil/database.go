// Package testutil provides shared fixtures for tests: migrated in-memory
// history databases, synthetic labeled tables and trained models.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/codeadvisor/internal/storage"
)

// SetupTestDB creates a migrated in-memory history database that is closed when
// the test finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	err := db.SaveTrainingRun(ctx, run)
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}
