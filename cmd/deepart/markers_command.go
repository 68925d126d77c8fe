package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"deepart/internal/apperr"
	"deepart/internal/files"
	"deepart/internal/marker"
	"deepart/internal/progress"
)

func newMarkersCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir string
		recursive bool
		masks     []string
		clearAll  bool
	)

	cmd := &cobra.Command{
		Use:   "markers [file or directory]...",
		Short: "Show the persisted conversion state of files",
		Long: "Show the persisted conversion state of files.\n\n" +
			"Markers are read from the configured store even when the convert\n" +
			"command runs with reports disabled. --clear removes them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inputs := cfg.Convert.Inputs
			if len(args) > 0 {
				inputs = args
			}
			if cmd.Flags().Changed("output") {
				cfg.Convert.OutputDir = outputDir
				if err := cfg.Normalize(); err != nil {
					return apperr.Wrap(apperr.CodeInvalidSettings, "invalid settings", err)
				}
			}
			opts := files.Options{
				OutputDir: cfg.Convert.OutputDir,
				Masks:     cfg.Convert.FileMasks,
				Recursive: cfg.Convert.Recursive || recursive,
			}
			if len(masks) > 0 {
				opts.Masks = masks
			}

			batch, err := files.Discover(inputs, opts)
			switch {
			case errors.Is(err, files.ErrNoInputs):
				return apperr.New(apperr.CodeInputsNotFound, "no files found")
			case err != nil:
				return apperr.Wrap(apperr.CodeInputsNotFound, "failed to scan input files", err)
			}

			store, closeStore, err := openStore(cmd.Context(), cfg, true)
			if err != nil {
				return apperr.Wrap(apperr.CodeInvalidSettings, "open marker store", err)
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			if clearAll {
				var errs error
				for _, file := range batch {
					errs = multierr.Append(errs, store.Delete(cmd.Context(), file.Target))
				}
				if errs != nil {
					return errs
				}
				fmt.Fprintf(out, "Cleared markers for %d file(s)\n", len(batch))
				return nil
			}

			rows := make([][]string, 0, len(batch))
			for _, file := range batch {
				rec, ok, err := store.Load(cmd.Context(), file.Target)
				if err != nil {
					return fmt.Errorf("load marker for %s: %w", file, err)
				}
				rows = append(rows, markerRow(file, rec, ok))
			}
			fmt.Fprintln(out, progress.RenderTable(
				[]string{"File", "State", "Media", "Effect", "Operation", "Message"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory the markers were written for")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().StringSliceVarP(&masks, "mask", "m", nil, "File name masks for directory inputs (repeatable)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete the markers instead of listing them")
	return cmd
}

func markerRow(file files.Descriptor, rec marker.Record, ok bool) []string {
	if !ok {
		return []string{file.String(), "none"}
	}
	return []string{
		file.String(),
		rec.State.String(),
		shortID(rec.MediaID),
		shortID(rec.EffectID),
		shortID(rec.OperationID),
		strings.Join(strings.Fields(rec.Message), " "),
	}
}

func shortID(id uuid.UUID) string {
	if id == uuid.Nil {
		return "-"
	}
	return id.String()[:8]
}
