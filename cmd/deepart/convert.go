package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"deepart/internal/apperr"
	"deepart/internal/config"
	"deepart/internal/converter"
	"deepart/internal/deepart"
	"deepart/internal/files"
	"deepart/internal/logging"
	"deepart/internal/marker"
	"deepart/internal/preflight"
	"deepart/internal/progress"
	"deepart/internal/runlock"
)

const maxListedFiles = 10

// convertOptions holds the flags that override the [convert] and [markers]
// sections for one run.
type convertOptions struct {
	effect      string
	mediaType   string
	outputDir   string
	recursive   bool
	masks       []string
	parallelism int
	timeout     config.Duration
	reports     string
	silent      bool
	noConfirm   bool
}

func (o *convertOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.effect, "effect", "e", "", "Effect name or id to apply")
	flags.StringVar(&o.mediaType, "media-type", "", "Only offer effects for this media type")
	flags.StringVarP(&o.outputDir, "output", "o", "", "Write results here instead of overwriting the sources")
	flags.BoolVarP(&o.recursive, "recursive", "r", false, "Descend into subdirectories")
	flags.StringSliceVarP(&o.masks, "mask", "m", nil, "File name masks for directory inputs (repeatable)")
	flags.IntVarP(&o.parallelism, "parallelism", "p", 0, "Maximum files converted at once (0 = all)")
	flags.Var(&o.timeout, "timeout", "Abort the whole batch after this long (e.g. 30m; 0 = no limit)")
	flags.StringVar(&o.reports, "reports", "", "Marker files to keep: none, failures or all")
	flags.BoolVarP(&o.silent, "silent", "s", false, "No prompts and no progress output")
	flags.BoolVar(&o.noConfirm, "no-confirm", false, "Do not ask before overwriting source files")
}

// apply merges explicitly set flags and positional inputs into cfg.
func (o *convertOptions) apply(changed func(name string) bool, cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Convert.Inputs = append([]string(nil), args...)
	}
	if changed("effect") {
		cfg.Convert.Effect = o.effect
	}
	if changed("media-type") {
		cfg.Convert.MediaType = o.mediaType
	}
	if changed("output") {
		cfg.Convert.OutputDir = o.outputDir
	}
	if changed("recursive") {
		cfg.Convert.Recursive = o.recursive
	}
	if changed("mask") {
		cfg.Convert.FileMasks = o.masks
	}
	if changed("parallelism") {
		cfg.Convert.Parallelism = o.parallelism
	}
	if changed("timeout") {
		cfg.Convert.Timeout = o.timeout
	}
	if changed("reports") {
		cfg.Markers.Reports = o.reports
	}
	if changed("silent") {
		cfg.Convert.Silent = o.silent
	}
	if changed("no-confirm") {
		cfg.Convert.ConfirmOverwrite = !o.noConfirm
	}
}

func runConvert(cmd *cobra.Command, cc *commandContext, opts *convertOptions, args []string) error {
	ctx := cmd.Context()
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	opts.apply(cmd.Flags().Changed, cfg, args)
	if err := cfg.Normalize(); err != nil {
		return apperr.Wrap(apperr.CodeInvalidSettings, "invalid settings", err)
	}
	if cfg.Convert.Silent && cfg.Convert.Effect == "" {
		return apperr.New(apperr.CodeEffectNotFound, "no effect is specified in silent mode")
	}
	if err := cfg.ValidateRun(); err != nil {
		return apperr.Wrap(apperr.CodeInvalidSettings, "invalid settings", err)
	}
	if len(cfg.Convert.Inputs) == 0 {
		return apperr.New(apperr.CodeInputsNotFound, "no input files or directories given (see --help)")
	}
	reports, err := marker.ParseReports(cfg.Markers.Reports)
	if err != nil {
		return apperr.Wrap(apperr.CodeInvalidSettings, "invalid settings", err)
	}

	logger, err := cc.logger(cfg)
	if err != nil {
		return err
	}

	if failed := preflight.Failed(preflight.RunAll(ctx, cfg, nil)); len(failed) > 0 {
		return apperr.New(apperr.CodeInvalidSettings, fmt.Sprintf("%s: %s", failed[0].Name, failed[0].Detail))
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return apperr.Wrap(apperr.CodeInvalidSettings, "", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release run lock failed", logging.Error(err))
		}
	}()

	out := cmd.OutOrStdout()
	silent := cfg.Convert.Silent

	batch, err := files.Discover(cfg.Convert.Inputs, files.Options{
		OutputDir: cfg.Convert.OutputDir,
		Masks:     cfg.Convert.FileMasks,
		Recursive: cfg.Convert.Recursive,
	})
	switch {
	case errors.Is(err, files.ErrNoInputs):
		return apperr.New(apperr.CodeInputsNotFound, "no files found to convert")
	case err != nil:
		return apperr.Wrap(apperr.CodeInputsNotFound, "failed to scan input files", err)
	}
	if !silent {
		printFileList(out, "These files will be converted:", batch)
		fmt.Fprintln(out)
	}

	prompts := newPrompter(cmd.InOrStdin(), out)
	service := newService(cfg)
	effects, err := availableEffects(ctx, service, cfg.Convert.MediaType, out, silent)
	if err != nil {
		return err
	}
	effect, err := resolveEffect(ctx, cfg, effects, prompts)
	if err != nil {
		return err
	}

	if !silent && cfg.Convert.ConfirmOverwrite {
		ok, err := prompts.confirmOverwrite(batch)
		if err != nil {
			return classify(ctx, apperr.CodeInvalidSettings, "read confirmation", err)
		}
		if !ok {
			return nil
		}
	}

	store, closeStore, err := openStore(ctx, cfg, false)
	if err != nil {
		return apperr.Wrap(apperr.CodeInvalidSettings, "open marker store", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close marker store failed", logging.Error(err))
		}
	}()

	conv := converter.New(service, store, converter.Options{
		Reports:      reports,
		Parallelism:  cfg.Convert.Parallelism,
		Timeout:      cfg.Convert.Timeout.Std(),
		PollInterval: cfg.API.PollInterval.Std(),
		PollStep:     cfg.API.PollStep.Std(),
		Logger:       logger,
	})

	var (
		sink    converter.ProgressSink
		console *progress.Console
	)
	if !silent {
		fmt.Fprintln(out, "Converting may take a while, please wait...")
		fmt.Fprintln(out)
		interactive := progress.IsTerminal(out)
		console = progress.NewConsole(out, batch, progress.Options{
			Interactive: interactive,
			Width:       progress.Width(out),
			Color:       interactive,
		})
		console.Start()
		sink = console
	}

	result, err := conv.ConvertBatch(ctx, batch, effect, sink)
	if console != nil {
		console.Stop()
		fmt.Fprintln(out)
		if result.Failed > 0 || result.Cancelled > 0 {
			fmt.Fprintln(out, console.Summary())
		}
	}
	if err != nil {
		return classifyBatchError(err)
	}
	if !silent {
		fmt.Fprintln(out, "Conversion completed")
	}
	return nil
}

func classifyBatchError(err error) error {
	switch {
	case errors.Is(err, converter.ErrCancelled):
		return apperr.Wrap(apperr.CodeCancelled, "", err)
	case errors.Is(err, converter.ErrBatchTimeout):
		return apperr.Wrap(apperr.CodeTimeout, "", err)
	default:
		return apperr.Wrap(apperr.CodeConvertingError, "", err)
	}
}

func availableEffects(ctx context.Context, service deepart.Service, mediaType string, out io.Writer, silent bool) ([]deepart.Effect, error) {
	if !silent {
		fmt.Fprintln(out, "Getting available effects...")
		fmt.Fprintln(out)
	}
	effects, err := service.ListEffects(ctx)
	if err != nil {
		return nil, classify(ctx, apperr.CodeGetEffectsFailed, "failed to get available effects", err)
	}
	effects = deepart.FilterByMediaType(effects, mediaType)
	if len(effects) == 0 {
		return nil, apperr.New(apperr.CodeEffectListEmpty, "no Deep Art effects are available at the moment, please try later")
	}
	return effects, nil
}

// resolveEffect matches the configured effect, or prompts for one. Silent runs
// without an effect are rejected before this point.
func resolveEffect(ctx context.Context, cfg *config.Config, effects []deepart.Effect, prompts *prompter) (deepart.Effect, error) {
	if name := strings.TrimSpace(cfg.Convert.Effect); name != "" {
		effect, err := deepart.FindEffect(effects, name)
		if err != nil {
			return deepart.Effect{}, apperr.Wrap(apperr.CodeEffectNotFound, "", err)
		}
		return effect, nil
	}
	effect, err := prompts.selectEffect(effects)
	if err != nil {
		return deepart.Effect{}, classify(ctx, apperr.CodeEffectNotFound, "no effect selected", err)
	}
	return effect, nil
}
