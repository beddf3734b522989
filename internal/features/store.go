package features

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Artifact file names under the cache directory. The set is validated
// all-or-nothing: a missing or unreadable member invalidates the whole
// derived cache.
const (
	matrixFile   = "features.gob"
	cleanedFile  = "cleaned.gob"
	metaFile     = "track_meta.gob"
	manifestFile = "derived_manifest.json"
)

// manifest records what the artifacts were built from so stale or
// inconsistent sets are rejected on load.
type manifest struct {
	SchemaVersion int     `json:"schema_version"`
	Rows          int     `json:"rows"`
	Dims          int     `json:"dims"`
	Dropped       int     `json:"dropped"`
	Scaler        *Scaler `json:"scaler"`
}

// Store persists and reloads the derived corpus artifacts.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Save writes every artifact atomically (temp file plus rename). The
// manifest goes last so a crash mid-save leaves an invalid set rather than
// a deceptively complete one.
func (s *Store) Save(c *Corpus) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create derived cache directory: %w", err)
	}

	if err := writeGob(filepath.Join(s.dir, matrixFile), c.Matrix); err != nil {
		return err
	}
	if err := writeGob(filepath.Join(s.dir, cleanedFile), c.Cleaned); err != nil {
		return err
	}
	if err := writeGob(filepath.Join(s.dir, metaFile), c.Meta); err != nil {
		return err
	}

	m := manifest{
		SchemaVersion: c.Schema.Version,
		Rows:          c.Rows(),
		Dims:          c.Dim(),
		Dropped:       c.Dropped,
		Scaler:        c.Scaler,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal derived manifest: %w", err)
	}
	return writeAtomic(filepath.Join(s.dir, manifestFile), data)
}

// Load restores the derived corpus from the artifact set. Any missing
// member, schema version mismatch, or row misalignment is an error; the
// caller treats every error identically as a cache miss.
func (s *Store) Load() (*Corpus, error) {
	var m manifest
	data, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("read derived manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse derived manifest: %w", err)
	}

	schema := NewSchema()
	if m.SchemaVersion != schema.Version {
		return nil, fmt.Errorf("derived cache schema version %d, want %d", m.SchemaVersion, schema.Version)
	}
	if m.Scaler == nil || m.Scaler.Dim() != schema.Dim() {
		return nil, fmt.Errorf("derived cache scaler does not match schema")
	}

	var matrix, cleaned [][]float64
	var meta []TrackMeta
	if err := readGob(filepath.Join(s.dir, matrixFile), &matrix); err != nil {
		return nil, err
	}
	if err := readGob(filepath.Join(s.dir, cleanedFile), &cleaned); err != nil {
		return nil, err
	}
	if err := readGob(filepath.Join(s.dir, metaFile), &meta); err != nil {
		return nil, err
	}

	if len(matrix) != m.Rows || len(cleaned) != m.Rows || len(meta) != m.Rows {
		return nil, fmt.Errorf("derived cache rows misaligned: matrix=%d cleaned=%d meta=%d manifest=%d",
			len(matrix), len(cleaned), len(meta), m.Rows)
	}
	for i, row := range matrix {
		if len(row) != schema.Dim() || len(cleaned[i]) != schema.Dim() {
			return nil, fmt.Errorf("derived cache row %d width mismatch", i)
		}
	}

	return &Corpus{
		Schema:  schema,
		Scaler:  m.Scaler,
		Matrix:  matrix,
		Cleaned: cleaned,
		Meta:    meta,
		Dropped: m.Dropped,
	}, nil
}

func writeGob(path string, value any) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create artifact %s: %w", filepath.Base(path), err)
	}
	if err := gob.NewEncoder(file).Encode(value); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode artifact %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close artifact %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename artifact %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readGob(path string, value any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", filepath.Base(path), err)
	}
	defer file.Close()
	if err := gob.NewDecoder(file).Decode(value); err != nil {
		return fmt.Errorf("decode artifact %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
