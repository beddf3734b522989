package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// CorpusHeader is the column set the loader requires, in canonical order.
const CorpusHeader = "track_id,track_name,artists,album_name,track_genre," +
	"popularity,explicit,danceability,energy,valence,acousticness," +
	"instrumentalness,speechiness,liveness,tempo,loudness,key,mode," +
	"time_signature,duration_ms"

// TrackRow describes one synthetic corpus track. Zero values fall back to
// a plausible mid-range profile so tests only state what they care about.
type TrackRow struct {
	ID      string
	Name    string
	Artist  string
	Genre   string
	Valence float64
	Energy  float64
	Tempo   float64
}

// WriteCorpusCSV writes a corpus file with the given tracks and returns
// its path.
func WriteCorpusCSV(t testing.TB, dir string, tracks ...TrackRow) string {
	t.Helper()

	rows := make([]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, track.csvRow())
	}
	path := filepath.Join(dir, "dataset.csv")
	content := CorpusHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write corpus %s: %v", path, err)
	}
	return path
}

// ValenceSpread returns the canonical three-track fixture with valence
// 0.9, 0.5, and 0.1 and all other descriptors equal.
func ValenceSpread() []TrackRow {
	return []TrackRow{
		{ID: "bright", Name: "Bright", Valence: 0.9},
		{ID: "middle", Name: "Middle", Valence: 0.5},
		{ID: "gloomy", Name: "Gloomy", Valence: 0.1},
	}
}

func (r TrackRow) csvRow() string {
	name := r.Name
	if name == "" {
		name = r.ID
	}
	artist := r.Artist
	if artist == "" {
		artist = "Test Artist"
	}
	genre := r.Genre
	if genre == "" {
		genre = "pop"
	}
	energy := r.Energy
	if energy == 0 {
		energy = 0.6
	}
	tempo := r.Tempo
	if tempo == 0 {
		tempo = 120
	}
	return strings.Join([]string{
		r.ID, name, artist, "Test Album", genre,
		"50", "False", "0.5",
		formatFloat(energy),
		formatFloat(r.Valence),
		"0.3", "0.1", "0.05", "0.2",
		formatFloat(tempo),
		"-8.5", "5", "1", "4", "210000",
	}, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
