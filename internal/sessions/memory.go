package sessions

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps sessions in process memory. It backs tests and
// configurations that do not set a session database path.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends a session.
func (m *MemoryStore) Record(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, session)
	return nil
}

// UserSessions returns a user's sessions newest first, mirroring the
// SQLite store's filter and limit semantics.
func (m *MemoryStore) UserSessions(_ context.Context, userID, mood string, limit int) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Session
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
		if mood != "" && s.Mood != mood {
			continue
		}
		result = append(result, s)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
