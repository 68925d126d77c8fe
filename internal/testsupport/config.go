package testsupport

import (
	"path/filepath"
	"testing"
	"time"

	"deepart/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Polling is shortened so conversions against a fake service finish quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.API.PollInterval = config.Duration(5 * time.Millisecond)
	cfgVal.API.PollStep = config.Duration(time.Millisecond)
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Markers.SQLitePath = filepath.Join(base, "state", "markers.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIURL points the test config at a fake service.
func WithAPIURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.URL = url
	}
}

// WithOutputDir sets convert.output_dir to a directory under the base dir.
func WithOutputDir(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.OutputDir = filepath.Join(b.baseDir, name)
	}
}

// WithSQLiteMarkers switches the marker store to sqlite with the given reports mode.
func WithSQLiteMarkers(reports string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Markers.Store = config.StoreSQLite
		b.cfg.Markers.Reports = reports
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
