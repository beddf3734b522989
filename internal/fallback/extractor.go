package fallback

import (
	"strings"

	"moodcue/internal/features"
)

// TrackInfo is the generic catalog metadata available for a track outside
// the offline corpus.
type TrackInfo struct {
	DurationMS int64
	Popularity int
	Explicit   bool
	Genres     []string
}

// Estimate is an approximate descriptor set for an out-of-corpus track,
// expressed in the same unscaled ranges the feature pipeline uses.
type Estimate struct {
	Valence          float64
	Energy           float64
	Danceability     float64
	Acousticness     float64
	Instrumentalness float64
	Speechiness      float64
	TempoNorm        float64
	LoudnessNorm     float64
	PopularityNorm   float64
	DurationMin      float64
	Explicit         float64
}

// Genre keyword lists driving the valence and energy estimates. Matching is
// substring based so "indie pop" counts as pop.
var (
	happyGenres     = []string{"pop", "dance", "funk", "disco", "happy"}
	sadGenres       = []string{"sad", "emo", "blues", "melancholic"}
	highEnergy      = []string{"rock", "metal", "edm", "dance", "electronic", "punk"}
	lowEnergy       = []string{"ambient", "classical", "acoustic", "chill", "folk"}
	keywordStep     = 0.2
	neutralBaseline = 0.5
)

// Extract derives an approximate descriptor set from catalog metadata. It
// never fails: with no genre tags the mood estimates stay at the neutral
// baseline.
func Extract(info TrackInfo) Estimate {
	duration := info.DurationMS
	if duration <= 0 {
		duration = 200000
	}

	return Estimate{
		Valence:          EstimateValence(info.Genres),
		Energy:           EstimateEnergy(info.Genres),
		Danceability:     0.5,
		Acousticness:     0.5,
		Instrumentalness: 0.3,
		Speechiness:      0.1,
		TempoNorm:        0.5,
		LoudnessNorm:     0.5,
		PopularityNorm:   float64(info.Popularity) / 100.0,
		DurationMin:      float64(duration) / 60000.0,
		Explicit:         boolToFloat(info.Explicit),
	}
}

// EstimateValence scores positivity from genre keywords: 0.5 baseline, +0.2
// per happy keyword match, -0.2 per sad match, clamped to [0,1].
func EstimateValence(genres []string) float64 {
	return estimateFromKeywords(genres, happyGenres, sadGenres)
}

// EstimateEnergy scores intensity from genre keywords with the same scheme.
func EstimateEnergy(genres []string) float64 {
	return estimateFromKeywords(genres, highEnergy, lowEnergy)
}

func estimateFromKeywords(genres, positive, negative []string) float64 {
	score := neutralBaseline
	for _, genre := range genres {
		lower := strings.ToLower(genre)
		switch {
		case containsAny(lower, positive):
			score += keywordStep
		case containsAny(lower, negative):
			score -= keywordStep
		}
	}
	return clamp01(score)
}

func containsAny(genre string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(genre, keyword) {
			return true
		}
	}
	return false
}

// Vector projects the estimate onto a feature schema so the caller can
// scale it into corpus space with the fitted scaler. One-hot key and time
// signature columns stay zero: the metadata carries no key information and
// a fabricated one would be noise.
func (e Estimate) Vector(schema features.Schema) []float64 {
	v := make([]float64, schema.Dim())
	set := func(col string, value float64) {
		if idx, ok := schema.Index(col); ok {
			v[idx] = value
		}
	}
	set(features.ColValence, e.Valence)
	set(features.ColEnergy, e.Energy)
	set(features.ColDanceability, e.Danceability)
	set(features.ColAcousticness, e.Acousticness)
	set("instrumentalness", e.Instrumentalness)
	set(features.ColSpeechiness, e.Speechiness)
	set(features.ColTempoNorm, e.TempoNorm)
	set("loudness_norm", e.LoudnessNorm)
	set("popularity_norm", e.PopularityNorm)
	set("duration_min", e.DurationMin)
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
