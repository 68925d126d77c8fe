package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deepart/internal/apperr"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag  string
		apiURLFlag  string
		verboseFlag bool
		opts        convertOptions
	)

	ctx := newCommandContext(&configFlag, &apiURLFlag, &verboseFlag)

	rootCmd := &cobra.Command{
		Use:   "deepart [flags] <file or directory>...",
		Short: "Convert images with Deep Art effects",
		Long: "Convert images with Deep Art effects.\n\n" +
			"Each file is uploaded, converted with the selected effect and written to the\n" +
			"output directory (or over the source when none is set). Transparency of the\n" +
			"source is reapplied to the result.",
		Example: "  deepart --effect Mosaic photos/\n" +
			"  deepart -r -o converted --silent --effect 3f0c6a1e-... ./album",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, &opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Deep Art API base URL")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	opts.register(rootCmd)

	rootCmd.AddCommand(newEffectsCommand(ctx))
	rootCmd.AddCommand(newMarkersCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	rootCmd.SetUsageTemplate(rootCmd.UsageTemplate() + fmt.Sprintf("\nExit codes:\n%s", apperr.Describe()))

	return rootCmd
}
