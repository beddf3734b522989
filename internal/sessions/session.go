package sessions

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"moodcue/internal/recommend"
)

// Session is a single mood-tagged listening event.
type Session struct {
	ID        string
	UserID    string
	TrackID   string
	TrackName string
	Artist    string
	Mood      string
	Intensity int
	CreatedAt time.Time
}

// NewSession builds a session with a fresh identifier and timestamp.
func NewSession(userID, trackID, trackName, artist, mood string, intensity int) Session {
	return Session{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(userID),
		TrackID:   strings.TrimSpace(trackID),
		TrackName: trackName,
		Artist:    artist,
		Mood:      strings.TrimSpace(mood),
		Intensity: intensity,
		CreatedAt: time.Now().UTC(),
	}
}

// ForLearning converts stored sessions into the engine's input shape.
func ForLearning(stored []Session) []recommend.Session {
	converted := make([]recommend.Session, 0, len(stored))
	for _, s := range stored {
		converted = append(converted, recommend.Session{
			TrackID:   s.TrackID,
			Mood:      s.Mood,
			Intensity: s.Intensity,
		})
	}
	return converted
}
