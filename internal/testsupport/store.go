package testsupport

import (
	"context"
	"testing"

	"upscale/internal/config"
	"upscale/internal/runs"
)

// MustOpenStore opens a runs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runs.Store {
	t.Helper()

	store, err := runs.Open(cfg)
	if err != nil {
		t.Fatalf("open run store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close run store: %v", err)
		}
	})
	return store
}

// MustNewRun inserts a pending run and fails the test on error.
func MustNewRun(t testing.TB, store *runs.Store, sourcePath, imageName string) *runs.Item {
	t.Helper()

	item, err := store.NewRun(context.Background(), sourcePath, imageName)
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	return item
}
