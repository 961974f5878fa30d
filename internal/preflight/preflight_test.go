package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"upscale/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	result := CheckFreeSpace("test", t.TempDir())
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckIdentityStore_MissingFileUsableDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_ids.json")
	result := CheckIdentityStore("test", path)
	if !result.Passed {
		t.Fatalf("expected pass for writable dir, got: %s", result.Detail)
	}
}

func TestCheckIdentityStore_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_ids.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckIdentityStore("test", path)
	if !result.Passed {
		t.Fatalf("expected pass for writable file, got: %s", result.Detail)
	}
}

func TestCheckIdentityStore_Unconfigured(t *testing.T) {
	if result := CheckIdentityStore("test", "  "); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckService_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result := CheckService(context.Background(), srv.URL)
	if !result.Passed {
		t.Fatalf("expected pass for any HTTP response, got: %s", result.Detail)
	}
}

func TestCheckService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	result := CheckService(context.Background(), srv.URL)
	if result.Passed {
		t.Fatal("expected failure for closed server")
	}
}

func TestCheckService_MissingURL(t *testing.T) {
	if result := CheckService(context.Background(), "  "); result.Passed {
		t.Fatal("expected failure for empty base url")
	}
}

func TestRunAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.IdentityPath = filepath.Join(base, "client_ids.json")
	cfg.Service.BaseURL = srv.URL
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	results := RunAll(context.Background(), &cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 checks, got %d", len(results))
	}
	for _, result := range results {
		if !result.Passed {
			t.Fatalf("check %s failed: %s", result.Name, result.Detail)
		}
	}
}
