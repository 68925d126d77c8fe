package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"deepart/internal/apperr"
	"deepart/internal/deepart"
	"deepart/internal/progress"
)

func newEffectsCommand(ctx *commandContext) *cobra.Command {
	var mediaType string
	var all bool

	cmd := &cobra.Command{
		Use:   "effects",
		Short: "List the effects offered by the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := cfg.Convert.MediaType
			if cmd.Flags().Changed("media-type") {
				filter = strings.ToUpper(strings.TrimSpace(mediaType))
			}
			if all {
				filter = ""
			}

			effects, err := newService(cfg).ListEffects(cmd.Context())
			if err != nil {
				return classify(cmd.Context(), apperr.CodeGetEffectsFailed, "failed to get available effects", err)
			}
			effects = deepart.FilterByMediaType(effects, filter)
			if len(effects) == 0 {
				return apperr.New(apperr.CodeEffectListEmpty, "no Deep Art effects are available at the moment, please try later")
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderEffects(effects))
			return nil
		},
	}

	cmd.Flags().StringVar(&mediaType, "media-type", "", "Only list effects for this media type")
	cmd.Flags().BoolVar(&all, "all", false, "List effects for every media type")
	return cmd
}

// renderEffects numbers effects in the same order the convert prompt uses.
func renderEffects(effects []deepart.Effect) string {
	title := cases.Title(language.English)
	numbered := deepart.Numbered(deepart.GroupByMediaType(effects))
	rows := make([][]string, 0, len(numbered))
	for i, effect := range numbered {
		mediaType := "Other"
		if effect.MediaType != "" {
			mediaType = title.String(strings.ToLower(effect.MediaType))
		}
		id := ""
		if effect.ID != uuid.Nil {
			id = effect.ID.String()
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), effect.Name, mediaType, id})
	}
	return progress.RenderTable(
		[]string{"#", "Name", "Media type", "ID"},
		rows,
		progress.AlignRight,
	)
}
