package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"moodcue/internal/fallback"
)

func newSimilarCommand(ctx *commandContext) *cobra.Command {
	var topK int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "similar <track-id|row-index>",
		Short: "Find tracks closest to a corpus track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}

			arg := strings.TrimSpace(args[0])
			row, ok := engine.RowForTrack(arg)
			if !ok {
				parsed, parseErr := strconv.Atoi(arg)
				if parseErr != nil {
					return fmt.Errorf("track %q is not in the corpus (use `moodcue estimate` for out-of-corpus tracks)", arg)
				}
				row = parsed
			}

			recs, err := engine.SimilarTracks(row, topK)
			if err != nil {
				return err
			}

			if !jsonOut {
				out := cmd.OutOrStdout()
				if detail, ok := engine.Corpus().TrackByIndex(row); ok {
					fmt.Fprintln(out, sectionHeader(
						fmt.Sprintf("Tracks similar to %s by %s", detail.Name, detail.Artist), out))
				}
			}
			return writeRecommendations(cmd, recs, jsonOut)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "Number of results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var genres []string
	var durationMS int64
	var popularity int
	var explicit bool
	var topK int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Find corpus tracks near an out-of-corpus track",
		Long: "Estimate a feature vector for a track that is not in the corpus " +
			"from generic metadata (genre tags, duration, popularity) and rank " +
			"corpus tracks against it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}

			info := fallback.TrackInfo{
				DurationMS: durationMS,
				Popularity: popularity,
				Explicit:   explicit,
				Genres:     genres,
			}
			recs, err := engine.SimilarToEstimate(info, topK)
			if err != nil {
				return err
			}

			if !jsonOut {
				estimate := fallback.Extract(info)
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, sectionHeader("Estimated profile", out))
				fmt.Fprintf(out, "  valence %.2f, energy %.2f (genres: %s)\n",
					estimate.Valence, estimate.Energy, strings.Join(genres, ", "))
			}
			return writeRecommendations(cmd, recs, jsonOut)
		},
	}

	cmd.Flags().StringSliceVarP(&genres, "genre", "g", nil, "Genre tags for the valence/energy estimate")
	cmd.Flags().Int64Var(&durationMS, "duration-ms", 0, "Track duration in milliseconds")
	cmd.Flags().IntVar(&popularity, "popularity", 0, "Popularity score 0-100")
	cmd.Flags().BoolVar(&explicit, "explicit", false, "Track carries an explicit flag")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "Number of results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
