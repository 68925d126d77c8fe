package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deepart/internal/apperr"
	"deepart/internal/preflight"
	"deepart/internal/progress"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check directories and connectivity to the effect service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := progress.IsTerminal(out)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			configDetail := ctx.configPath
			if !ctx.configExists {
				configDetail += " (not found, defaults used)"
			}
			fmt.Fprintln(out, renderStatusLine("Config file", statusOK, configDetail, colorize))
			fmt.Fprintln(out, renderStatusLine("API URL", statusOK, cfg.API.URL, colorize))
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg, newService(cfg))
			for _, result := range results {
				fmt.Fprintln(out, renderResult(result, colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return apperr.New(apperr.CodeInvalidSettings, fmt.Sprintf("%d of %d check(s) failed", len(failed), len(results)))
			}
			return nil
		},
	}
}
