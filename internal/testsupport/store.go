package testsupport

import (
	"context"
	"testing"

	"moodcue/internal/config"
	"moodcue/internal/sessions"
)

// MustOpenSessions opens a sessions.SQLiteStore for tests and registers
// cleanup.
func MustOpenSessions(t testing.TB, cfg *config.Config) *sessions.SQLiteStore {
	t.Helper()

	store, err := sessions.Open(cfg.SessionDBPath())
	if err != nil {
		t.Fatalf("sessions.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordSession stores a mood-tagged session for tests.
func RecordSession(t testing.TB, store sessions.Store, userID, trackID, mood string, intensity int) sessions.Session {
	t.Helper()

	session := sessions.NewSession(userID, trackID, "", "", mood, intensity)
	if err := store.Record(context.Background(), session); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return session
}
