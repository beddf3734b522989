package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// rawCache persists the parsed corpus rows and their index in SQLite so a
// process restart with an unchanged source file skips the CSV reparse.
type rawCache struct {
	db   *sql.DB
	path string
}

// cacheMeta is the validation record stored alongside the cached rows.
type cacheMeta struct {
	Fingerprint string
	BuiltAt     time.Time
	TrackCount  int
	IndexCount  int
}

func openRawCache(dir string) (*rawCache, error) {
	dbPath := filepath.Join(dir, "corpus.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open corpus cache db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &rawCache{db: db, path: dbPath}
	if err := cache.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

func (c *rawCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *rawCache) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS corpus_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    fingerprint TEXT NOT NULL,
    built_at TEXT NOT NULL,
    track_count INTEGER NOT NULL,
    index_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tracks (
    pos INTEGER PRIMARY KEY,
    track_id TEXT NOT NULL,
    track_name TEXT NOT NULL,
    artists TEXT NOT NULL,
    album_name TEXT NOT NULL,
    track_genre TEXT NOT NULL,
    popularity INTEGER NOT NULL,
    explicit INTEGER NOT NULL,
    danceability REAL,
    energy REAL,
    valence REAL,
    acousticness REAL,
    instrumentalness REAL,
    speechiness REAL,
    liveness REAL,
    tempo REAL,
    loudness REAL,
    key INTEGER NOT NULL,
    mode INTEGER NOT NULL,
    time_signature INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL
);`
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure corpus cache schema: %w", err)
	}
	return nil
}

// Meta returns the stored validation record, or ok=false when the cache has
// never been written.
func (c *rawCache) Meta(ctx context.Context) (cacheMeta, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT fingerprint, built_at, track_count, index_count FROM corpus_meta WHERE id = 1`)

	var meta cacheMeta
	var builtAt string
	if err := row.Scan(&meta.Fingerprint, &builtAt, &meta.TrackCount, &meta.IndexCount); err != nil {
		if err == sql.ErrNoRows {
			return cacheMeta{}, false, nil
		}
		return cacheMeta{}, false, fmt.Errorf("read corpus cache meta: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, builtAt)
	if err == nil {
		meta.BuiltAt = parsed
	}
	return meta, true, nil
}

// Replace atomically swaps the cached rows and metadata for a fresh build.
func (c *rawCache) Replace(ctx context.Context, fingerprint string, tracks []Track, indexCount int) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus cache rewrite: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks`); err != nil {
		return fmt.Errorf("clear cached tracks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tracks (
        pos, track_id, track_name, artists, album_name, track_genre,
        popularity, explicit,
        danceability, energy, valence, acousticness, instrumentalness,
        speechiness, liveness, tempo, loudness,
        key, mode, time_signature, duration_ms
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare track insert: %w", err)
	}
	defer stmt.Close()

	for pos, track := range tracks {
		_, err := stmt.ExecContext(ctx,
			pos, track.ID, track.Name, track.Artists, track.Album, track.Genre,
			track.Popularity, boolToInt(track.Explicit),
			nullableFloat(track.Danceability), nullableFloat(track.Energy),
			nullableFloat(track.Valence), nullableFloat(track.Acousticness),
			nullableFloat(track.Instrumentalness), nullableFloat(track.Speechiness),
			nullableFloat(track.Liveness), nullableFloat(track.Tempo),
			nullableFloat(track.Loudness),
			track.Key, track.Mode, track.TimeSignature, track.DurationMS,
		)
		if err != nil {
			return fmt.Errorf("insert track %d: %w", pos, err)
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO corpus_meta (id, fingerprint, built_at, track_count, index_count)
        VALUES (1, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            fingerprint = excluded.fingerprint,
            built_at = excluded.built_at,
            track_count = excluded.track_count,
            index_count = excluded.index_count`,
		fingerprint, time.Now().UTC().Format(time.RFC3339Nano), len(tracks), indexCount)
	if err != nil {
		return fmt.Errorf("write corpus cache meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus cache rewrite: %w", err)
	}
	return nil
}

// Restore reads all cached rows back in position order.
func (c *rawCache) Restore(ctx context.Context) ([]Track, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT
        track_id, track_name, artists, album_name, track_genre,
        popularity, explicit,
        danceability, energy, valence, acousticness, instrumentalness,
        speechiness, liveness, tempo, loudness,
        key, mode, time_signature, duration_ms
    FROM tracks ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("read cached tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var track Track
		var explicit int
		var dance, energy, valence, acoustic, instr, speech, live, tempo, loud sql.NullFloat64
		err := rows.Scan(
			&track.ID, &track.Name, &track.Artists, &track.Album, &track.Genre,
			&track.Popularity, &explicit,
			&dance, &energy, &valence, &acoustic, &instr,
			&speech, &live, &tempo, &loud,
			&track.Key, &track.Mode, &track.TimeSignature, &track.DurationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cached track: %w", err)
		}
		track.Explicit = explicit != 0
		track.Danceability = floatOrNaN(dance)
		track.Energy = floatOrNaN(energy)
		track.Valence = floatOrNaN(valence)
		track.Acousticness = floatOrNaN(acoustic)
		track.Instrumentalness = floatOrNaN(instr)
		track.Speechiness = floatOrNaN(speech)
		track.Liveness = floatOrNaN(live)
		track.Tempo = floatOrNaN(tempo)
		track.Loudness = floatOrNaN(loud)
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached tracks: %w", err)
	}
	return tracks, nil
}

func nullableFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
