package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Track is one row of the raw corpus: display metadata plus the
// precomputed audio descriptors the feature pipeline consumes.
//
// Missing numeric descriptors are represented as NaN for floats and -1 for
// the small integer descriptors so cleaning can drop incomplete rows later
// without losing the row here.
type Track struct {
	ID               string
	Name             string
	Artists          string
	Album            string
	Genre            string
	Popularity       int
	Explicit         bool
	Danceability     float64
	Energy           float64
	Valence          float64
	Acousticness     float64
	Instrumentalness float64
	Speechiness      float64
	Liveness         float64
	Tempo            float64
	Loudness         float64
	Key              int
	Mode             int
	TimeSignature    int
	DurationMS       int64
}

// HasAudioDescriptors reports whether every descriptor the feature pipeline
// requires is present on the row.
func (t Track) HasAudioDescriptors() bool {
	for _, v := range []float64{
		t.Danceability, t.Energy, t.Valence, t.Acousticness,
		t.Instrumentalness, t.Speechiness, t.Liveness, t.Tempo, t.Loudness,
	} {
		if math.IsNaN(v) {
			return false
		}
	}
	if t.Key < 0 || t.Mode < 0 || t.TimeSignature < 0 {
		return false
	}
	return t.DurationMS > 0
}

// requiredColumns is the full set of corpus columns the loader insists on.
// A source file missing any of these is a schema drift, not a partial row,
// and is rejected outright.
var requiredColumns = []string{
	"track_id", "track_name", "artists", "album_name", "track_genre",
	"popularity", "explicit",
	"danceability", "energy", "valence", "acousticness", "instrumentalness",
	"speechiness", "liveness", "tempo", "loudness",
	"key", "mode", "time_signature", "duration_ms",
}

// parseCSV reads the corpus from r. Unknown columns are ignored so dataset
// exports with extra bookkeeping columns still load.
func parseCSV(r io.Reader) ([]Track, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read corpus header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("corpus missing required column %q", name)
		}
	}

	var tracks []Track
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row %d: %w", len(tracks)+2, err)
		}
		tracks = append(tracks, parseTrack(record, cols))
	}
	return tracks, nil
}

func parseTrack(record []string, cols map[string]int) Track {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	return Track{
		ID:               field("track_id"),
		Name:             field("track_name"),
		Artists:          field("artists"),
		Album:            field("album_name"),
		Genre:            field("track_genre"),
		Popularity:       parseIntDefault(field("popularity"), 0),
		Explicit:         parseBoolDefault(field("explicit")),
		Danceability:     parseFloat(field("danceability")),
		Energy:           parseFloat(field("energy")),
		Valence:          parseFloat(field("valence")),
		Acousticness:     parseFloat(field("acousticness")),
		Instrumentalness: parseFloat(field("instrumentalness")),
		Speechiness:      parseFloat(field("speechiness")),
		Liveness:         parseFloat(field("liveness")),
		Tempo:            parseFloat(field("tempo")),
		Loudness:         parseFloat(field("loudness")),
		Key:              parseIntDefault(field("key"), -1),
		Mode:             parseIntDefault(field("mode"), -1),
		TimeSignature:    parseIntDefault(field("time_signature"), -1),
		DurationMS:       parseInt64Default(field("duration_ms"), 0),
	}
}

func parseFloat(value string) float64 {
	if value == "" {
		return math.NaN()
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		// Some exports encode small ints as floats ("4.0").
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil {
			return fallback
		}
		return int(f)
	}
	return parsed
}

func parseInt64Default(value string, fallback int64) int64 {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil {
			return fallback
		}
		return int64(f)
	}
	return parsed
}

func parseBoolDefault(value string) bool {
	parsed, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return false
	}
	return parsed
}
