package testsupport

import (
	"context"
	"testing"

	"deepart/internal/marker"
)

// MustOpenSQLite opens a marker.SQLiteStore for tests and registers cleanup.
func MustOpenSQLite(t testing.TB, path string) *marker.SQLiteStore {
	t.Helper()

	store, err := marker.OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("marker.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
