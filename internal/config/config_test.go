package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"deepart/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "deepart", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.API.URL != "https://deep-art.k8s.akvelon.net/api" {
		t.Fatalf("unexpected api url %q", cfg.API.URL)
	}
	if cfg.API.PollInterval.Std() != 2*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.API.PollInterval)
	}
	if cfg.Markers.Reports != config.ReportsNone || cfg.Markers.Store != config.StoreFiles {
		t.Fatalf("unexpected marker defaults %+v", cfg.Markers)
	}
	if strings.Join(cfg.Convert.FileMasks, ",") != "*.png,*.jpg,*.jpeg" {
		t.Fatalf("unexpected masks %v", cfg.Convert.FileMasks)
	}
	wantState := filepath.Join(tempHome, ".local", "share", "deepart")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Markers.SQLitePath != filepath.Join(wantState, "markers.db") {
		t.Fatalf("unexpected sqlite path %q", cfg.Markers.SQLitePath)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(wantState); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestLoadCustomPathAndEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEEPART_EFFECT", "Watercolor")
	t.Setenv("DEEPART_TIMEOUT", "00:20:00")
	t.Setenv("DEEPART_PARALLELISM", "4")

	path := filepath.Join(t.TempDir(), "deepart.toml")
	body := `
[api]
url = "http://localhost:9000/api/"
poll_interval = "5"

[convert]
effect = "Pen"
media_type = "video"
file_masks = ["*.png", " *.png ", ""]

[markers]
reports = "ALL"
store = "sqlite"

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.API.URL != "http://localhost:9000/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.URL)
	}
	if cfg.API.PollInterval.Std() != 5*time.Second {
		t.Fatalf("expected bare number to mean seconds, got %s", cfg.API.PollInterval)
	}
	if cfg.Convert.Effect != "Watercolor" {
		t.Fatalf("expected env effect to win over file, got %q", cfg.Convert.Effect)
	}
	if cfg.Convert.Timeout.Std() != 20*time.Minute {
		t.Fatalf("unexpected timeout %s", cfg.Convert.Timeout)
	}
	if cfg.Convert.Parallelism != 4 {
		t.Fatalf("unexpected parallelism %d", cfg.Convert.Parallelism)
	}
	if cfg.Convert.MediaType != "VIDEO" {
		t.Fatalf("expected media type upper-cased, got %q", cfg.Convert.MediaType)
	}
	if len(cfg.Convert.FileMasks) != 1 || cfg.Convert.FileMasks[0] != "*.png" {
		t.Fatalf("expected masks de-duplicated, got %v", cfg.Convert.FileMasks)
	}
	if cfg.Markers.Reports != config.ReportsAll || cfg.Markers.Store != config.StoreSQLite {
		t.Fatalf("unexpected markers %+v", cfg.Markers)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepart.toml")
	if err := os.WriteFile(path, []byte("[api]\nurll = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"relative url", func(c *config.Config) { c.API.URL = "deep-art/api" }, "api.url"},
		{"negative parallelism", func(c *config.Config) { c.Convert.Parallelism = -1 }, "convert.parallelism"},
		{"reports enum", func(c *config.Config) { c.Markers.Reports = "some" }, "markers.reports"},
		{"store enum", func(c *config.Config) { c.Markers.Store = "redis" }, "markers.store"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad mask", func(c *config.Config) { c.Convert.FileMasks = []string{"[a"} }, "file_masks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateRunRequiresEffectInSilentMode(t *testing.T) {
	cfg := config.Default()
	cfg.Convert.Silent = true
	cfg.Convert.Inputs = []string{"a.png"}
	if err := cfg.ValidateRun(); err == nil || !strings.Contains(err.Error(), "effect") {
		t.Fatalf("expected effect error, got %v", err)
	}
	cfg.Convert.Effect = "Pen"
	if err := cfg.ValidateRun(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"":         0,
		"15":       15 * time.Second,
		"1m30s":    90 * time.Second,
		"01:02:03": time.Hour + 2*time.Minute + 3*time.Second,
	}
	for input, want := range tests {
		got, err := config.ParseDuration(input)
		if err != nil {
			t.Fatalf("ParseDuration(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseDuration(%q) = %s, want %s", input, got, want)
		}
	}
	for _, bad := range []string{"-5", "1:2", "soon", "-1s"} {
		if _, err := config.ParseDuration(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCreateSampleLoadsCleanly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path, false); err == nil {
		t.Fatal("expected second CreateSample without overwrite to fail")
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(encoded), "poll_interval = '2s'") {
		t.Fatalf("expected durations encoded as strings, got:\n%s", encoded)
	}
}
