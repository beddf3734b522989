package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"moodcue/internal/recommend"
	"moodcue/internal/sessions"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Record and inspect mood-tagged listening sessions",
	}

	sessionsCmd.AddCommand(newSessionsAddCommand(ctx))
	sessionsCmd.AddCommand(newSessionsListCommand(ctx))

	return sessionsCmd
}

func newSessionsAddCommand(ctx *commandContext) *cobra.Command {
	var mood string
	var intensity int

	cmd := &cobra.Command{
		Use:   "add <user> <track-id>",
		Short: "Record one mood-tagged session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, trackID := args[0], args[1]

			canonical, ok := recommend.CanonicalMood(mood)
			if !ok {
				return fmt.Errorf("unknown mood %q, must be one of %s",
					mood, strings.Join(recommend.Moods(), ", "))
			}
			if intensity < 0 || intensity > 100 {
				return fmt.Errorf("intensity %d outside [0, 100]", intensity)
			}

			// Fill in display metadata when the track is in the corpus.
			var trackName, artist string
			if engine, err := ctx.ensureEngine(cmd.Context()); err == nil {
				if row, found := engine.RowForTrack(strings.TrimSpace(trackID)); found {
					if detail, okDetail := engine.Corpus().TrackByIndex(row); okDetail {
						trackName, artist = detail.Name, detail.Artist
					}
				}
			}

			session := sessions.NewSession(userID, trackID, trackName, artist, canonical, intensity)
			if err := ctx.withSessionStore(func(store sessions.Store) error {
				return store.Record(cmd.Context(), session)
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s session %s for %s\n",
				canonical, session.ID, userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mood, "mood", "m", "", "Mood label for the session (required)")
	cmd.Flags().IntVarP(&intensity, "intensity", "i", 0, "Mood intensity 0-100 (0 means unrecorded)")
	_ = cmd.MarkFlagRequired("mood")
	return cmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var mood string
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list <user>",
		Short: "List a user's sessions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]

			moodFilter := ""
			if strings.TrimSpace(mood) != "" {
				canonical, ok := recommend.CanonicalMood(mood)
				if !ok {
					return fmt.Errorf("unknown mood %q, must be one of %s",
						mood, strings.Join(recommend.Moods(), ", "))
				}
				moodFilter = canonical
			}

			var stored []sessions.Session
			if err := ctx.withSessionStore(func(store sessions.Store) error {
				var err error
				stored, err = store.UserSessions(cmd.Context(), userID, moodFilter, limit)
				return err
			}); err != nil {
				return err
			}

			if jsonOut {
				type sessionView struct {
					ID        string    `json:"id"`
					TrackID   string    `json:"track_id"`
					TrackName string    `json:"track_name,omitempty"`
					Artist    string    `json:"artist,omitempty"`
					Mood      string    `json:"mood"`
					Intensity int       `json:"intensity"`
					CreatedAt time.Time `json:"created_at"`
				}
				views := make([]sessionView, 0, len(stored))
				for _, s := range stored {
					views = append(views, sessionView{
						ID: s.ID, TrackID: s.TrackID, TrackName: s.TrackName,
						Artist: s.Artist, Mood: s.Mood, Intensity: s.Intensity,
						CreatedAt: s.CreatedAt,
					})
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(stored) == 0 {
				fmt.Fprintf(out, "No sessions for %s\n", userID)
				return nil
			}
			rows := make([]table.Row, 0, len(stored))
			for _, s := range stored {
				name := s.TrackName
				if name == "" {
					name = s.TrackID
				}
				rows = append(rows, table.Row{
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncate(name, 40),
					s.Mood,
					s.Intensity,
				})
			}
			fmt.Fprintln(out, renderTable(table.Row{"When", "Track", "Mood", "Intensity"}, rows, 4))
			return nil
		},
	}

	cmd.Flags().StringVarP(&mood, "mood", "m", "", "Only show sessions with this mood")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of sessions (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
