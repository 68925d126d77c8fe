package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateMarkers(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateRun applies the checks that only matter for a conversion run, once
// CLI flags have been merged.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Convert.Silent && c.Convert.Effect == "" {
		return errors.New("convert.effect is required in silent mode: pass --effect or set DEEPART_EFFECT")
	}
	if c.Convert.Silent && len(c.Convert.Inputs) == 0 {
		return errors.New("at least one input path is required in silent mode")
	}
	return nil
}

func (c *Config) validateAPI() error {
	parsed, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("api.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.url must be an absolute http(s) url, got %q", c.API.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.url must include a host, got %q", c.API.URL)
	}
	if c.API.HTTPTimeout < 0 {
		return errors.New("api.http_timeout must not be negative")
	}
	return nil
}

func (c *Config) validateConvert() error {
	if c.Convert.Parallelism < 0 {
		return errors.New("convert.parallelism must be 0 (unbounded) or positive")
	}
	if c.Convert.Timeout < 0 {
		return errors.New("convert.timeout must not be negative")
	}
	for _, mask := range c.Convert.FileMasks {
		if _, err := filepath.Match(mask, "probe"); err != nil {
			return fmt.Errorf("convert.file_masks: invalid pattern %q", mask)
		}
	}
	return nil
}

func (c *Config) validateMarkers() error {
	switch c.Markers.Reports {
	case ReportsNone, ReportsFailures, ReportsAll:
	default:
		return fmt.Errorf("markers.reports must be one of none, failures, all; got %q", c.Markers.Reports)
	}
	switch c.Markers.Store {
	case StoreFiles:
	case StoreSQLite:
		if c.Markers.SQLitePath == "" {
			return errors.New("markers.sqlite_path must be set when markers.store is sqlite")
		}
	default:
		return fmt.Errorf("markers.store must be files or sqlite; got %q", c.Markers.Store)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error; got %q", c.Logging.Level)
	}
	return nil
}
