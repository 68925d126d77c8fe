package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// applyEnv overlays DEEPART_* environment variables onto file values.
func (c *Config) applyEnv() error {
	if value, ok := lookupEnv("DEEPART_API_URL"); ok {
		c.API.URL = value
	}
	if value, ok := lookupEnv("DEEPART_EFFECT"); ok {
		c.Convert.Effect = value
	}
	if value, ok := lookupEnv("DEEPART_MEDIA_TYPE"); ok {
		c.Convert.MediaType = value
	}
	if value, ok := lookupEnv("DEEPART_OUTPUT_DIR"); ok {
		c.Convert.OutputDir = value
	}
	if value, ok := lookupEnv("DEEPART_REPORTS"); ok {
		c.Markers.Reports = value
	}
	if value, ok := lookupEnv("DEEPART_PARALLELISM"); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("DEEPART_PARALLELISM: invalid integer %q", value)
		}
		c.Convert.Parallelism = n
	}
	if value, ok := lookupEnv("DEEPART_SILENT"); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("DEEPART_SILENT: invalid boolean %q", value)
		}
		c.Convert.Silent = b
	}
	durations := []struct {
		name   string
		target *Duration
	}{
		{"DEEPART_TIMEOUT", &c.Convert.Timeout},
		{"DEEPART_POLL_INTERVAL", &c.API.PollInterval},
		{"DEEPART_HTTP_TIMEOUT", &c.API.HTTPTimeout},
	}
	for _, d := range durations {
		value, ok := lookupEnv(d.name)
		if !ok {
			continue
		}
		if err := d.target.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// Normalize trims values, fills empty fields with defaults and expands paths.
// It is safe to call again after CLI flags have been applied.
func (c *Config) Normalize() error {
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	if c.API.URL == "" {
		c.API.URL = defaultAPIURL
	}
	if c.API.PollInterval <= 0 {
		c.API.PollInterval = Duration(defaultPollInterval)
	}
	if c.API.PollStep <= 0 {
		c.API.PollStep = Duration(defaultPollStep)
	}

	c.Convert.Effect = strings.TrimSpace(c.Convert.Effect)
	c.Convert.MediaType = strings.ToUpper(strings.TrimSpace(c.Convert.MediaType))
	c.Convert.FileMasks = normalizeMasks(c.Convert.FileMasks)

	var err error
	if c.Convert.OutputDir, err = expandPath(strings.TrimSpace(c.Convert.OutputDir)); err != nil {
		return fmt.Errorf("convert.output_dir: %w", err)
	}

	c.Markers.Reports = strings.ToLower(strings.TrimSpace(c.Markers.Reports))
	if c.Markers.Reports == "" {
		c.Markers.Reports = ReportsNone
	}
	c.Markers.Store = strings.ToLower(strings.TrimSpace(c.Markers.Store))
	if c.Markers.Store == "" {
		c.Markers.Store = StoreFiles
	}

	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Markers.SQLitePath) == "" {
		c.Markers.SQLitePath = filepath.Join(c.Paths.StateDir, defaultSQLiteName)
	}
	if c.Markers.SQLitePath, err = expandPath(c.Markers.SQLitePath); err != nil {
		return fmt.Errorf("markers.sqlite_path: %w", err)
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func normalizeMasks(masks []string) []string {
	out := make([]string, 0, len(masks))
	seen := make(map[string]struct{}, len(masks))
	for _, mask := range masks {
		mask = strings.TrimSpace(mask)
		if mask == "" {
			continue
		}
		if _, ok := seen[mask]; ok {
			continue
		}
		seen[mask] = struct{}{}
		out = append(out, mask)
	}
	if len(out) == 0 {
		out = append(out, DefaultFileMasks...)
	}
	return out
}
