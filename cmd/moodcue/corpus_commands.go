package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newCorpusCommand(ctx *commandContext) *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Corpus inspection and maintenance",
	}

	corpusCmd.AddCommand(newCorpusStatsCommand(ctx))
	corpusCmd.AddCommand(newCorpusRebuildCommand(ctx))

	return corpusCmd
}

func newCorpusStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the loaded corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}
			stats := ctx.loader.Stats()
			derived := engine.Corpus()

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"total_tracks":  stats.TotalTracks,
					"usable_rows":   derived.Rows(),
					"dropped_rows":  derived.Dropped,
					"dimensions":    derived.Dim(),
					"unique_genres": stats.UniqueGenres,
					"valence_mean":  stats.ValenceMean,
					"energy_mean":   stats.EnergyMean,
					"tempo_mean":    stats.TempoMean,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sectionHeader("Corpus", out))
			rows := []table.Row{
				{"Total tracks", stats.TotalTracks},
				{"Usable rows", derived.Rows()},
				{"Dropped rows", derived.Dropped},
				{"Feature dimensions", derived.Dim()},
				{"Unique genres", stats.UniqueGenres},
				{"Mean valence", fmt.Sprintf("%.3f", stats.ValenceMean)},
				{"Mean energy", fmt.Sprintf("%.3f", stats.EnergyMean)},
				{"Mean tempo", fmt.Sprintf("%.1f BPM", stats.TempoMean)},
			}
			fmt.Fprintln(out, renderTable(table.Row{"Metric", "Value"}, rows, 2))
			if len(stats.Genres) > 0 {
				preview := stats.Genres
				if len(preview) > 10 {
					preview = preview[:10]
				}
				fmt.Fprintf(out, "Genres: %s\n", strings.Join(preview, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newCorpusRebuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the derived feature corpus from source",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureEngine(cmd.Context()); err != nil {
				return err
			}
			rebuilt, err := ctx.preprocessor.Rebuild(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Rebuilt feature corpus: %d rows, %d dimensions, %d dropped\n",
				rebuilt.Rows(), rebuilt.Dim(), rebuilt.Dropped)
			return nil
		},
	}
}
