package corpus

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const testHeader = "track_id,track_name,artists,album_name,track_genre," +
	"popularity,explicit,danceability,energy,valence,acousticness," +
	"instrumentalness,speechiness,liveness,tempo,loudness,key,mode," +
	"time_signature,duration_ms"

func writeCorpus(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, "dataset.csv")
	content := testHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return path
}

func corpusRow(id, name, genre string, valence float64) string {
	return strings.Join([]string{
		id, name, "Test Artist", "Test Album", genre,
		"50", "False", "0.5", "0.6",
		strconv.FormatFloat(valence, 'f', -1, 64),
		"0.3", "0.1", "0.05", "0.2", "120", "-8.5", "5", "1", "4", "210000",
	}, ",")
}

func newTestLoader(t *testing.T, sourcePath string) *Loader {
	t.Helper()
	loader, err := NewLoader(sourcePath, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	t.Cleanup(func() { _ = loader.Close() })
	return loader
}

func TestLoadBuildsIndex(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpus(t, dir,
		corpusRow("t1", "First", "pop", 0.9),
		corpusRow("t2", "Second", "rock", 0.5),
		corpusRow("t3", "Third", "blues", 0.1),
	)

	loader := newTestLoader(t, path)
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loader.Len() != 3 {
		t.Fatalf("Len = %d, want 3", loader.Len())
	}

	track, ok := loader.Features("t2")
	if !ok {
		t.Fatal("Features should find t2")
	}
	if track.Name != "Second" {
		t.Errorf("track name = %q, want Second", track.Name)
	}
	if track.Valence != 0.5 {
		t.Errorf("valence = %v, want 0.5", track.Valence)
	}
}

func TestLoadDuplicateIDKeepsLastRow(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpus(t, dir,
		corpusRow("dup", "Older", "pop", 0.2),
		corpusRow("dup", "Newer", "pop", 0.8),
	)

	loader := newTestLoader(t, path)
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	track, ok := loader.Features("dup")
	if !ok {
		t.Fatal("Features should find dup")
	}
	if track.Name != "Newer" {
		t.Errorf("duplicate id resolved to %q, want Newer", track.Name)
	}
}

func TestLoadMissingSourceDegrades(t *testing.T) {
	loader := newTestLoader(t, filepath.Join(t.TempDir(), "absent.csv"))
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("missing source should not fail Load: %v", err)
	}

	if loader.Len() != 0 {
		t.Errorf("Len = %d, want 0", loader.Len())
	}
	if _, ok := loader.Features("anything"); ok {
		t.Error("empty loader must miss every lookup")
	}
	stats := loader.Stats()
	if stats.TotalTracks != 0 {
		t.Errorf("TotalTracks = %d, want 0", stats.TotalTracks)
	}
}

func TestLoadRestoresFromCacheWithoutRewrite(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpus(t, dir,
		corpusRow("t1", "First", "pop", 0.9),
		corpusRow("t2", "Second", "rock", 0.5),
	)
	cacheDir := t.TempDir()

	first, err := NewLoader(path, cacheDir, nil)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	if err := first.Load(context.Background()); err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	firstMeta, ok, err := first.cache.Meta(context.Background())
	if err != nil || !ok {
		t.Fatalf("cache meta after first load: ok=%v err=%v", ok, err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close first loader: %v", err)
	}

	second, err := NewLoader(path, cacheDir, nil)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	defer second.Close()
	if err := second.Load(context.Background()); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}

	secondMeta, ok, err := second.cache.Meta(context.Background())
	if err != nil || !ok {
		t.Fatalf("cache meta after second load: ok=%v err=%v", ok, err)
	}
	if !secondMeta.BuiltAt.Equal(firstMeta.BuiltAt) {
		t.Error("unchanged fingerprint must not rewrite the cache")
	}

	if second.Len() != first.Len() {
		t.Errorf("restored Len = %d, want %d", second.Len(), first.Len())
	}
	for id, pos := range first.index {
		if second.index[id] != pos {
			t.Errorf("index[%q] = %d, want %d", id, second.index[id], pos)
		}
	}
}

func TestLoadRebuildsOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpus(t, dir, corpusRow("t1", "First", "pop", 0.9))
	cacheDir := t.TempDir()

	loader, err := NewLoader(path, cacheDir, nil)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := loader.Close(); err != nil {
		t.Fatalf("close loader: %v", err)
	}

	writeCorpus(t, dir,
		corpusRow("t1", "First", "pop", 0.9),
		corpusRow("t2", "Second", "rock", 0.5),
	)

	reloaded, err := NewLoader(path, cacheDir, nil)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	defer reloaded.Close()
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("Len after source change = %d, want 2", reloaded.Len())
	}
}

func TestLoadCorruptedCacheRebuilds(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpus(t, dir, corpusRow("t1", "First", "pop", 0.9))
	cacheDir := t.TempDir()

	loader, err := NewLoader(path, cacheDir, nil)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := loader.Close(); err != nil {
		t.Fatalf("close loader: %v", err)
	}

	// Truncate the cache database to simulate corruption.
	if err := os.WriteFile(filepath.Join(cacheDir, "corpus.db"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("corrupt cache: %v", err)
	}
	// Remove WAL artifacts so the corrupted main file is what gets read.
	os.Remove(filepath.Join(cacheDir, "corpus.db-wal"))
	os.Remove(filepath.Join(cacheDir, "corpus.db-shm"))

	rebuilt, err := NewLoader(path, cacheDir, nil)
	if err != nil {
		// Opening a corrupt database may fail outright; that path is also a
		// rebuild in production because the caller recreates the cache dir.
		t.Skipf("open corrupt cache: %v", err)
	}
	defer rebuilt.Close()
	if err := rebuilt.Load(context.Background()); err != nil {
		t.Fatalf("Load over corrupt cache failed: %v", err)
	}
	if rebuilt.Len() != 1 {
		t.Errorf("Len = %d, want 1", rebuilt.Len())
	}
}

func TestQueries(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpus(t, dir,
		corpusRow("t1", "Bright", "pop", 0.9),
		corpusRow("t2", "Middle", "rock", 0.5),
		corpusRow("t3", "Gloomy", "blues", 0.1),
		corpusRow("t4", "Shiny", "pop", 0.8),
	)

	loader := newTestLoader(t, path)
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	pop := loader.SearchByGenre("pop", 0)
	if len(pop) != 2 {
		t.Errorf("SearchByGenre(pop) = %d rows, want 2", len(pop))
	}
	if limited := loader.SearchByGenre("pop", 1); len(limited) != 1 {
		t.Errorf("SearchByGenre(pop, 1) = %d rows, want 1", len(limited))
	}

	high := loader.HighValence(0.7, 0)
	if len(high) != 2 {
		t.Errorf("HighValence = %d rows, want 2", len(high))
	}
	low := loader.LowValence(0.3, 0)
	if len(low) != 1 || low[0].ID != "t3" {
		t.Errorf("LowValence = %+v, want only t3", low)
	}

	stats := loader.Stats()
	if stats.TotalTracks != 4 {
		t.Errorf("TotalTracks = %d, want 4", stats.TotalTracks)
	}
	if stats.UniqueGenres != 3 {
		t.Errorf("UniqueGenres = %d, want 3", stats.UniqueGenres)
	}
	wantMean := (0.9 + 0.5 + 0.1 + 0.8) / 4
	if math.Abs(stats.ValenceMean-wantMean) > 1e-9 {
		t.Errorf("ValenceMean = %v, want %v", stats.ValenceMean, wantMean)
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	_, err := parseCSV(strings.NewReader("track_id,track_name\nabc,def\n"))
	if err == nil {
		t.Fatal("expected error for missing required columns")
	}
}

func TestParseCSVMissingDescriptorBecomesNaN(t *testing.T) {
	row := strings.Join([]string{
		"t1", "Name", "Artist", "Album", "pop",
		"50", "False", "", "0.6", "0.5", "0.3",
		"0.1", "0.05", "0.2", "120", "-8.5", "5", "1", "4", "210000",
	}, ",")
	tracks, err := parseCSV(strings.NewReader(testHeader + "\n" + row + "\n"))
	if err != nil {
		t.Fatalf("parseCSV failed: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("rows = %d, want 1", len(tracks))
	}
	if !math.IsNaN(tracks[0].Danceability) {
		t.Error("empty danceability should parse as NaN")
	}
	if tracks[0].HasAudioDescriptors() {
		t.Error("row with missing descriptor must not report complete descriptors")
	}
}
