package testsupport

import (
	"context"
	"testing"
	"time"

	"itti/internal/config"
	"itti/internal/identity"
	"itti/internal/ledger"
)

// MustOpenStore opens a ledger.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
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

// RecordIdentity seeds one known identity for tests using the provided store.
func RecordIdentity(t testing.TB, store *ledger.Store, id identity.Identity, containerID string) {
	t.Helper()

	err := store.RecordAll(context.Background(), map[identity.Identity]string{id: containerID}, time.Now())
	if err != nil {
		t.Fatalf("store.RecordAll: %v", err)
	}
}
