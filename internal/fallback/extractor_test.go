package fallback

import (
	"math"
	"testing"

	"moodcue/internal/features"
)

func TestEstimateValenceDirection(t *testing.T) {
	if got := EstimateValence([]string{"pop"}); got <= 0.5 {
		t.Errorf("valence for pop = %v, want > 0.5", got)
	}
	if got := EstimateValence([]string{"sad"}); got >= 0.5 {
		t.Errorf("valence for sad = %v, want < 0.5", got)
	}
	if got := EstimateValence(nil); got != 0.5 {
		t.Errorf("valence with no genres = %v, want 0.5", got)
	}
}

func TestEstimateValenceSubstringMatch(t *testing.T) {
	if got := EstimateValence([]string{"indie pop"}); got != 0.7 {
		t.Errorf("valence for indie pop = %v, want 0.7", got)
	}
	if got := EstimateValence([]string{"Melancholic Folk"}); got != 0.3 {
		t.Errorf("valence for melancholic folk = %v, want 0.3", got)
	}
}

func TestEstimateClampedToUnitInterval(t *testing.T) {
	many := []string{"pop", "dance", "funk", "disco", "happy", "dance-pop"}
	if got := EstimateValence(many); got != 1 {
		t.Errorf("valence = %v, want clamp at 1", got)
	}
	gloomy := []string{"sad", "emo", "blues", "melancholic", "sadcore"}
	if got := EstimateValence(gloomy); got != 0 {
		t.Errorf("valence = %v, want clamp at 0", got)
	}

	for _, genres := range [][]string{nil, many, gloomy, {"pop", "sad"}} {
		got := EstimateValence(genres)
		if got < 0 || got > 1 {
			t.Errorf("valence %v outside [0,1] for %v", got, genres)
		}
	}
}

func TestEstimateEnergyDirection(t *testing.T) {
	if got := EstimateEnergy([]string{"metal"}); got <= 0.5 {
		t.Errorf("energy for metal = %v, want > 0.5", got)
	}
	if got := EstimateEnergy([]string{"ambient"}); got >= 0.5 {
		t.Errorf("energy for ambient = %v, want < 0.5", got)
	}
}

func TestExtractNeutralPlaceholders(t *testing.T) {
	est := Extract(TrackInfo{DurationMS: 180000, Popularity: 80, Explicit: true, Genres: []string{"pop"}})

	if est.Danceability != 0.5 || est.Acousticness != 0.5 || est.TempoNorm != 0.5 || est.LoudnessNorm != 0.5 {
		t.Errorf("placeholders = %+v, want 0.5 defaults", est)
	}
	if est.Instrumentalness != 0.3 || est.Speechiness != 0.1 {
		t.Errorf("instrumentalness/speechiness = %v/%v, want 0.3/0.1", est.Instrumentalness, est.Speechiness)
	}
	if est.PopularityNorm != 0.8 {
		t.Errorf("popularity_norm = %v, want 0.8", est.PopularityNorm)
	}
	if est.DurationMin != 3 {
		t.Errorf("duration_min = %v, want 3", est.DurationMin)
	}
	if est.Explicit != 1 {
		t.Errorf("explicit = %v, want 1", est.Explicit)
	}
}

func TestExtractDefaultsMissingDuration(t *testing.T) {
	est := Extract(TrackInfo{})
	if math.Abs(est.DurationMin-200000.0/60000.0) > 1e-9 {
		t.Errorf("duration_min = %v, want default from 200000ms", est.DurationMin)
	}
}

func TestEstimateVectorAlignsWithSchema(t *testing.T) {
	schema := features.NewSchema()
	est := Extract(TrackInfo{DurationMS: 210000, Popularity: 50, Genres: []string{"pop"}})
	v := est.Vector(schema)

	if len(v) != schema.Dim() {
		t.Fatalf("vector dim = %d, want %d", len(v), schema.Dim())
	}

	idx, _ := schema.Index(features.ColValence)
	if v[idx] != 0.7 {
		t.Errorf("valence column = %v, want 0.7", v[idx])
	}

	// No key information exists for an out-of-corpus track.
	keyIdx, _ := schema.Index("key_5")
	if v[keyIdx] != 0 {
		t.Errorf("key one-hot = %v, want 0", v[keyIdx])
	}
}
