package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"moodcue/internal/recommend"
)

// writeJSON renders v as indented JSON on the command's stdout. Every
// subcommand's --json mode goes through here so machine output stays uniform.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// recommendationView is the JSON projection of one ranked result.
type recommendationView struct {
	Rank              int     `json:"rank"`
	RowIndex          int     `json:"row_index"`
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Artist            string  `json:"artist"`
	Album             string  `json:"album"`
	Genre             string  `json:"genre"`
	Popularity        int     `json:"popularity"`
	Similarity        float64 `json:"similarity"`
	SimilarityPercent float64 `json:"similarity_percent"`
}

func recommendationViews(recs []recommend.Recommendation) []recommendationView {
	views := make([]recommendationView, 0, len(recs))
	for i, rec := range recs {
		views = append(views, recommendationView{
			Rank:              i + 1,
			RowIndex:          rec.RowIndex,
			ID:                rec.ID,
			Name:              rec.Name,
			Artist:            rec.Artist,
			Album:             rec.Album,
			Genre:             rec.Genre,
			Popularity:        rec.Popularity,
			Similarity:        rec.Similarity,
			SimilarityPercent: rec.SimilarityPercent,
		})
	}
	return views
}

// writeRecommendations renders results as JSON or a table depending on the
// command's --json flag value.
func writeRecommendations(cmd *cobra.Command, recs []recommend.Recommendation, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, recommendationViews(recs))
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No matching tracks")
		return nil
	}

	rows := make([]table.Row, 0, len(recs))
	for i, rec := range recs {
		rows = append(rows, table.Row{
			i + 1,
			truncate(rec.Name, 40),
			truncate(rec.Artist, 30),
			truncate(rec.Genre, 16),
			formatPercent(rec.SimilarityPercent),
		})
	}
	fmt.Fprintln(out, renderTable(
		table.Row{"#", "Track", "Artist", "Genre", "Match"},
		rows, 1, 5,
	))
	return nil
}

func formatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', 1, 64) + "%"
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 3 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
