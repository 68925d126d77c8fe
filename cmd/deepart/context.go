package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"deepart/internal/apperr"
	"deepart/internal/config"
	"deepart/internal/deepart"
	"deepart/internal/logging"
	"deepart/internal/marker"
)

const userAgent = "deepart-cli"

type commandContext struct {
	configFlag  *string
	apiURLFlag  *string
	verboseFlag *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, apiURLFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		apiURLFlag:  apiURLFlag,
		verboseFlag: verboseFlag,
	}
}

// ensureConfig loads the configuration once and applies the persistent flags.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = apperr.Wrap(apperr.CodeInvalidSettings, "load config", err)
			return
		}
		if c.apiURLFlag != nil && strings.TrimSpace(*c.apiURLFlag) != "" {
			cfg.API.URL = *c.apiURLFlag
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Normalize(); err != nil {
			c.configErr = apperr.Wrap(apperr.CodeInvalidSettings, "invalid settings", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = apperr.Wrap(apperr.CodeInvalidSettings, "invalid settings", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = apperr.Wrap(apperr.CodeInvalidSettings, "prepare state directory", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidSettings, "configure logging", err)
	}
	return logger, nil
}

func newService(cfg *config.Config) *deepart.Client {
	return deepart.NewClient(deepart.Config{
		BaseURL: cfg.API.URL,
		Timeout: cfg.API.HTTPTimeout.Std(),
	}, deepart.WithUserAgent(userAgent))
}

// openStore returns the configured marker store. With reports disabled and
// always unset there is no store at all.
func openStore(ctx context.Context, cfg *config.Config, always bool) (marker.Store, func() error, error) {
	noop := func() error { return nil }
	if cfg.Markers.Reports == config.ReportsNone && !always {
		return nil, noop, nil
	}
	if cfg.Markers.Store == config.StoreSQLite {
		store, err := marker.OpenSQLite(ctx, cfg.Markers.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
	return marker.NewFileStore(), noop, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
