package features

import (
	"math"
	"strconv"

	"moodcue/internal/corpus"
)

// SchemaVersion identifies the feature layout. Bump it whenever columns are
// added, removed, or reordered so stale derived caches rebuild instead of
// misaligning.
const SchemaVersion = 1

// Feature column names referenced elsewhere in the codebase.
const (
	ColValence      = "valence"
	ColEnergy       = "energy"
	ColDanceability = "danceability"
	ColAcousticness = "acousticness"
	ColSpeechiness  = "speechiness"
	ColTempoNorm    = "tempo_norm"
)

const (
	keyDomain     = 12 // pitch classes 0-11
	timeSigDomain = 6  // dataset time_signature values 0-5
)

// Schema is the explicit ordered feature layout. Every vector placed into
// the feature space, whether a corpus row, a mood prototype, or a fallback
// estimate, follows this column order.
type Schema struct {
	Version int
	columns []string
	byName  map[string]int
}

// NewSchema returns the current feature schema.
func NewSchema() Schema {
	columns := []string{
		ColValence, ColEnergy, ColDanceability, ColAcousticness,
		"instrumentalness", ColSpeechiness, "liveness",
		"mode_major",
	}
	for i := 0; i < keyDomain; i++ {
		columns = append(columns, "key_"+strconv.Itoa(i))
	}
	for i := 0; i < timeSigDomain; i++ {
		columns = append(columns, "time_sig_"+strconv.Itoa(i))
	}
	columns = append(columns, "popularity_norm", "loudness_norm", ColTempoNorm, "duration_min")

	byName := make(map[string]int, len(columns))
	for i, name := range columns {
		byName[name] = i
	}
	return Schema{Version: SchemaVersion, columns: columns, byName: byName}
}

// Dim returns the number of feature columns.
func (s Schema) Dim() int { return len(s.columns) }

// Columns returns the ordered column names.
func (s Schema) Columns() []string {
	cp := make([]string, len(s.columns))
	copy(cp, s.columns)
	return cp
}

// Index returns the position of a named column.
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Vector encodes one cleaned corpus row into the feature layout. The row
// must have complete audio descriptors; call Track.HasAudioDescriptors
// before encoding.
func (s Schema) Vector(t corpus.Track) []float64 {
	v := make([]float64, len(s.columns))
	i := 0
	v[i] = t.Valence
	i++
	v[i] = t.Energy
	i++
	v[i] = t.Danceability
	i++
	v[i] = t.Acousticness
	i++
	v[i] = t.Instrumentalness
	i++
	v[i] = t.Speechiness
	i++
	v[i] = t.Liveness
	i++
	// Mode encodes as a major/minor indicator; anything unmapped counts as
	// minor.
	if t.Mode == 1 {
		v[i] = 1
	}
	i++
	for k := 0; k < keyDomain; k++ {
		if t.Key == k {
			v[i] = 1
		}
		i++
	}
	for ts := 0; ts < timeSigDomain; ts++ {
		if t.TimeSignature == ts {
			v[i] = 1
		}
		i++
	}
	v[i] = float64(t.Popularity) / 100.0
	i++
	v[i] = NormalizeLoudness(t.Loudness)
	i++
	v[i] = NormalizeTempo(t.Tempo)
	i++
	v[i] = float64(t.DurationMS) / 60000.0
	return v
}

// NormalizeLoudness maps dB loudness (roughly -60..0) onto [0,1].
func NormalizeLoudness(db float64) float64 {
	return clamp01((db + 60.0) / 60.0)
}

// NormalizeTempo maps BPM (roughly 50..200) onto [0,1].
func NormalizeTempo(bpm float64) float64 {
	return clamp01((bpm - 50.0) / 150.0)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
