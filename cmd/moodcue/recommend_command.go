package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moodcue/internal/recommend"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var topK int
	var userID string
	var weight float64
	var minSimilarity float64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "recommend <mood>",
		Short: "Rank corpus tracks against a mood",
		Long: "Rank every corpus track against a mood prototype and print the " +
			"closest matches. With --user, the user's stored sessions are " +
			"replayed first and their learned centroid is blended into the " +
			"mood vector.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}

			query := recommend.DefaultQuery(args[0])
			query.TopK = cfg.Recommend.TopK
			query.PersonalizationWeight = cfg.Recommend.PersonalizationWeight
			query.MinSimilarity = cfg.Recommend.MinSimilarity
			if cmd.Flags().Changed("top-k") {
				query.TopK = topK
			}
			if cmd.Flags().Changed("weight") {
				query.PersonalizationWeight = weight
			}
			if cmd.Flags().Changed("min-similarity") {
				query.MinSimilarity = minSimilarity
			}

			if user := strings.TrimSpace(userID); user != "" {
				query.UserID = user
				if err := ctx.personalize(cmd.Context(), engine, user); err != nil {
					return err
				}
			}

			recs, err := engine.MoodRecommendations(query)
			if err != nil {
				return err
			}

			if !jsonOut {
				mood, _ := recommend.CanonicalMood(query.Mood)
				fmt.Fprintln(cmd.OutOrStdout(), sectionHeader(mood+" picks", cmd.OutOrStdout()))
			}
			return writeRecommendations(cmd, recs, jsonOut)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", recommend.DefaultTopK, "Number of results")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Personalize using this user's session history")
	cmd.Flags().Float64VarP(&weight, "weight", "w", recommend.DefaultPersonalizationWeight, "Centroid blend weight in [0,1]")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "Drop results below this similarity (0 keeps all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newMoodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "moods",
		Short:       "List the supported mood names",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, mood := range recommend.Moods() {
				fmt.Fprintln(cmd.OutOrStdout(), mood)
			}
			return nil
		},
	}
}
