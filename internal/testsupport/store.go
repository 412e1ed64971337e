package testsupport

import (
	"testing"

	"filesorter/internal/config"
	"filesorter/internal/ledger"
)

// MustOpenStore opens the ledger database for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.SQLiteStore {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
