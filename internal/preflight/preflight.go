package preflight

import (
	"context"
	"path/filepath"

	"github.com/samber/lo"

	"deepart/internal/config"
	"deepart/internal/deepart"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to cfg. The service check is skipped
// when service is nil.
func RunAll(ctx context.Context, cfg *config.Config, service deepart.Service) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Lock file and default marker database live here.
	results = append(results, CheckWritableDirectory("State directory", cfg.Paths.StateDir))

	if cfg.Convert.OutputDir != "" {
		results = append(results, CheckWritableDirectory("Output directory", cfg.Convert.OutputDir))
	}

	if cfg.Markers.Store == config.StoreSQLite && cfg.Markers.SQLitePath != "" {
		dir := filepath.Dir(cfg.Markers.SQLitePath)
		if filepath.Clean(dir) != filepath.Clean(cfg.Paths.StateDir) {
			results = append(results, CheckWritableDirectory("Marker database directory", dir))
		}
	}

	if service != nil {
		results = append(results, CheckService(ctx, service, cfg.Convert.MediaType))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	return lo.Filter(results, func(r Result, _ int) bool { return !r.Passed })
}
