package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "client_ids.json")
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(storePath(t))
	value, err := store.Get("poster.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty value, got %q", value)
	}
}

func TestFileStoreCorruptFileIsEmpty(t *testing.T) {
	path := storePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileStore(path)
	value, err := store.Get("poster.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty value from corrupt file, got %q", value)
	}
}

func TestFileStorePutRoundTrip(t *testing.T) {
	path := storePath(t)
	store := NewFileStore(path)

	const id = "0123456789abcdef0123456789abcdef"
	stored, err := store.Put("poster.png", id)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if stored != id {
		t.Fatalf("expected %q, got %q", id, stored)
	}

	// A fresh store instance over the same file sees the value.
	again := NewFileStore(path)
	value, err := again.Get("poster.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != id {
		t.Fatalf("expected persisted %q, got %q", id, value)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mapping["poster.png"] != id {
		t.Fatalf("unexpected file contents: %v", mapping)
	}
}

func TestFileStorePutYieldsToExistingValidID(t *testing.T) {
	store := NewFileStore(storePath(t))

	const first = "0123456789abcdef0123456789abcdef"
	if _, err := store.Put("poster.png", first); err != nil {
		t.Fatalf("put: %v", err)
	}

	winner, err := store.Put("poster.png", "ffffffffffffffffffffffffffffffff")
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if winner != first {
		t.Fatalf("expected existing value to win, got %q", winner)
	}
}

func TestFileStoreAllAndRemove(t *testing.T) {
	store := NewFileStore(storePath(t))

	if _, err := store.Put("a.png", "0123456789abcdef0123456789abcdef"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put("b.png", "ffffffffffffffffffffffffffffffff"); err != nil {
		t.Fatalf("put: %v", err)
	}

	all, err := store.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}

	if err := store.Remove("a.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove("missing.png"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	all, err = store.All()
	if err != nil {
		t.Fatalf("all after remove: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(all))
	}
	if _, ok := all["b.png"]; !ok {
		t.Fatalf("expected b.png to survive, got %v", all)
	}
}

func TestFileStorePutReplacesMalformedValue(t *testing.T) {
	path := storePath(t)
	if err := os.WriteFile(path, []byte(`{"poster.png":"short"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileStore(path)

	const fresh = "0123456789abcdef0123456789abcdef"
	winner, err := store.Put("poster.png", fresh)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if winner != fresh {
		t.Fatalf("malformed value should be replaced, got %q", winner)
	}
}
