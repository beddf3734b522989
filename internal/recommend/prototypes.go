package recommend

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"moodcue/internal/features"
)

// Mood prototype target values over the mood-relevant feature dimensions.
// These are fixed points, not learned: typical audio characteristics of
// each emotional category.
var moodPrototypes = map[string]map[string]float64{
	"Happy": {
		features.ColValence:      0.8,
		features.ColEnergy:       0.65,
		features.ColDanceability: 0.75,
		features.ColAcousticness: 0.2,
		features.ColTempoNorm:    0.6,
		features.ColSpeechiness:  0.1,
	},
	"Sad": {
		features.ColValence:      0.25,
		features.ColEnergy:       0.35,
		features.ColDanceability: 0.4,
		features.ColAcousticness: 0.6,
		features.ColTempoNorm:    0.3,
		features.ColSpeechiness:  0.15,
	},
	"Energized": {
		features.ColValence:      0.7,
		features.ColEnergy:       0.85,
		features.ColDanceability: 0.8,
		features.ColAcousticness: 0.15,
		features.ColTempoNorm:    0.75,
		features.ColSpeechiness:  0.12,
	},
	"Angry": {
		features.ColValence:      0.3,
		features.ColEnergy:       0.9,
		features.ColDanceability: 0.5,
		features.ColAcousticness: 0.1,
		features.ColTempoNorm:    0.7,
		features.ColSpeechiness:  0.2,
	},
	"Calm": {
		features.ColValence:      0.6,
		features.ColEnergy:       0.25,
		features.ColDanceability: 0.45,
		features.ColAcousticness: 0.75,
		features.ColTempoNorm:    0.25,
		features.ColSpeechiness:  0.08,
	},
}

// Moods returns the supported mood names, sorted.
func Moods() []string {
	names := make([]string, 0, len(moodPrototypes))
	for name := range moodPrototypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CanonicalMood maps user input onto a defined mood name ("happy" becomes
// "Happy"). The boolean reports whether the mood is defined at all.
//
// A cases.Caser carries transformer state, so a fresh one is built per call
// rather than shared across concurrent requests.
func CanonicalMood(name string) (string, bool) {
	canonical := cases.Title(language.Und).String(strings.TrimSpace(name))
	_, ok := moodPrototypes[canonical]
	return canonical, ok
}
