package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"deepart/internal/config"
	"deepart/internal/deepart"
	"deepart/internal/deepart/deeparttest"
	"deepart/internal/testsupport"
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

func TestCheckWritableDirectory_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	result := CheckWritableDirectory("out", path)
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckWritableDirectory_UnderFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckWritableDirectory("out", filepath.Join(f, "sub"))
	if result.Passed {
		t.Fatal("expected failure when the ancestor is a file")
	}
}

func TestCheckWritableDirectory_Empty(t *testing.T) {
	if result := CheckWritableDirectory("out", ""); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckService_OK(t *testing.T) {
	srv := deeparttest.NewServer(t,
		deepart.Effect{ID: uuid.New(), Name: "Mosaic", MediaType: "IMAGE"},
		deepart.Effect{ID: uuid.New(), Name: "Noir", MediaType: "VIDEO"},
	)
	client := deepart.NewClient(deepart.Config{BaseURL: srv.BaseURL()})

	result := CheckService(context.Background(), client, "image")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result.Detail != "1 image effect(s) available" {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckService_NoEffects(t *testing.T) {
	srv := deeparttest.NewServer(t, deepart.Effect{ID: uuid.New(), Name: "Noir", MediaType: "VIDEO"})
	client := deepart.NewClient(deepart.Config{BaseURL: srv.BaseURL()})

	if result := CheckService(context.Background(), client, "IMAGE"); result.Passed {
		t.Fatal("expected failure without image effects")
	}
}

func TestCheckService_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	client := deepart.NewClient(deepart.Config{BaseURL: srv.URL})

	result := CheckService(context.Background(), client, "IMAGE")
	if result.Passed {
		t.Fatal("expected failure for 503")
	}
	if result.Detail != "service answered 503" {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_FilesystemOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOutputDir("out"))

	results := RunAll(context.Background(), cfg, nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_IncludesServiceAndDatabase(t *testing.T) {
	srv := deeparttest.NewServer(t, deepart.Effect{ID: uuid.New(), Name: "Mosaic", MediaType: "IMAGE"})
	client := deepart.NewClient(deepart.Config{BaseURL: srv.BaseURL()})

	cfg := testsupport.NewConfig(t, testsupport.WithSQLiteMarkers(config.ReportsAll))
	cfg.Markers.SQLitePath = filepath.Join(t.TempDir(), "db", "markers.db")

	results := RunAll(context.Background(), cfg, client)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	want := "State directory,Marker database directory,Effect service"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("checks = %s, want %s", got, want)
	}
}
