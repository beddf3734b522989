package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search corpus tracks by name or artist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("search query is empty")
			}

			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}

			matches := engine.Corpus().SearchTracks(query, limit)
			if jsonOut {
				type matchView struct {
					RowIndex int    `json:"row_index"`
					ID       string `json:"id"`
					Name     string `json:"name"`
					Artist   string `json:"artist"`
				}
				views := make([]matchView, 0, len(matches))
				for _, m := range matches {
					views = append(views, matchView{RowIndex: m.RowIndex, ID: m.ID, Name: m.Name, Artist: m.Artist})
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "No tracks match %q\n", query)
				return nil
			}
			rows := make([]table.Row, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, table.Row{m.RowIndex, m.ID, truncate(m.Name, 40), truncate(m.Artist, 30)})
			}
			fmt.Fprintln(out, renderTable(table.Row{"Row", "ID", "Track", "Artist"}, rows, 1))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of matches")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
