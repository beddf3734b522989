package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the narrow read/write surface the CLI and engine wiring use.
type Store interface {
	Record(ctx context.Context, session Session) error
	UserSessions(ctx context.Context, userID, mood string, limit int) ([]Session, error)
	Close() error
}

// SQLiteStore persists sessions in a single-table SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the session database.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("session database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure session db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS sessions (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            track_id TEXT NOT NULL,
            track_name TEXT NOT NULL DEFAULT '',
            artist TEXT NOT NULL DEFAULT '',
            mood TEXT NOT NULL,
            intensity INTEGER NOT NULL,
            created_at TEXT NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_sessions_user_mood
            ON sessions (user_id, mood, created_at);
    `)
	if err != nil {
		return fmt.Errorf("create sessions schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Record inserts a session row.
func (s *SQLiteStore) Record(ctx context.Context, session Session) error {
	if session.UserID == "" || session.TrackID == "" {
		return errors.New("session requires user id and track id")
	}
	if session.ID == "" || session.CreatedAt.IsZero() {
		return errors.New("session requires id and timestamp")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (id, user_id, track_id, track_name, artist, mood, intensity, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.TrackID,
		session.TrackName,
		session.Artist,
		session.Mood,
		session.Intensity,
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UserSessions returns a user's sessions newest first. An empty mood
// matches every mood; a limit of zero or less means no limit.
func (s *SQLiteStore) UserSessions(ctx context.Context, userID, mood string, limit int) ([]Session, error) {
	query := `SELECT id, user_id, track_id, track_name, artist, mood, intensity, created_at
              FROM sessions WHERE user_id = ?`
	args := []any{userID}
	if mood != "" {
		query += ` AND mood = ?`
		args = append(args, mood)
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var result []Session
	for rows.Next() {
		var session Session
		var created string
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.TrackID,
			&session.TrackName,
			&session.Artist,
			&session.Mood,
			&session.Intensity,
			&created,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
			session.CreatedAt = ts
		}
		result = append(result, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return result, nil
}
