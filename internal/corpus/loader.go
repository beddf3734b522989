package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"moodcue/internal/logging"
)

// Loader populates the track index and gives read-only access to corpus
// rows. Load runs once during startup; afterwards every query is safe for
// concurrent use because the rows and index are never mutated again.
type Loader struct {
	sourcePath string
	cache      *rawCache
	lock       *flock.Flock
	logger     *slog.Logger

	tracks []Track
	index  map[string]int
}

// Stats summarizes the loaded corpus.
type Stats struct {
	TotalTracks  int
	UniqueGenres int
	Genres       []string
	ValenceMean  float64
	EnergyMean   float64
	TempoMean    float64
}

// NewLoader creates a loader for the corpus at sourcePath, caching parsed
// rows under cacheDir.
func NewLoader(sourcePath, cacheDir string, logger *slog.Logger) (*Loader, error) {
	logger = logging.NewComponentLogger(logger, "corpus")

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	cache, err := openRawCache(cacheDir)
	if err != nil {
		return nil, err
	}

	return &Loader{
		sourcePath: sourcePath,
		cache:      cache,
		lock:       flock.New(filepath.Join(cacheDir, "corpus.lock")),
		logger:     logger,
		index:      map[string]int{},
	}, nil
}

// Close releases the cache database handle.
func (l *Loader) Close() error {
	return l.cache.Close()
}

// Load reads the corpus, preferring the cache when its fingerprint matches
// the source file. A missing source file leaves the loader empty: every
// lookup misses and callers fall back to genre-based estimation.
func (l *Loader) Load(ctx context.Context) error {
	if _, err := os.Stat(l.sourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("corpus source missing, audio descriptors will be estimated from genre tags only",
				logging.String("path", l.sourcePath))
			l.tracks = nil
			l.index = map[string]int{}
			return nil
		}
		return fmt.Errorf("stat corpus source: %w", err)
	}

	fingerprint, err := fileFingerprint(l.sourcePath)
	if err != nil {
		return err
	}

	if l.restoreFromCache(ctx, fingerprint) {
		return nil
	}

	return l.rebuild(ctx, fingerprint)
}

func (l *Loader) restoreFromCache(ctx context.Context, fingerprint string) bool {
	meta, ok, err := l.cache.Meta(ctx)
	if err != nil {
		l.logger.Warn("corpus cache metadata unreadable, rebuilding",
			logging.Args(logging.Error(err))...)
		return false
	}
	if !ok || meta.Fingerprint != fingerprint {
		return false
	}

	tracks, err := l.cache.Restore(ctx)
	if err != nil {
		l.logger.Warn("corpus cache unreadable, rebuilding",
			logging.Args(logging.Error(err))...)
		return false
	}

	l.tracks = tracks
	l.index = buildIndex(tracks)
	l.logger.Info("corpus restored from cache",
		logging.Int("track_count", len(l.tracks)),
		logging.Int("index_count", len(l.index)))
	return true
}

func (l *Loader) rebuild(ctx context.Context, fingerprint string) error {
	// Serialize rebuilds across processes sharing the cache directory.
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("acquire corpus cache lock: %w", err)
	}
	defer func() { _ = l.lock.Unlock() }()

	// Another process may have finished the rebuild while we waited.
	if l.restoreFromCache(ctx, fingerprint) {
		return nil
	}

	file, err := os.Open(l.sourcePath)
	if err != nil {
		return fmt.Errorf("open corpus source: %w", err)
	}
	defer file.Close()

	tracks, err := parseCSV(file)
	if err != nil {
		return fmt.Errorf("parse corpus: %w", err)
	}

	l.tracks = tracks
	l.index = buildIndex(tracks)

	if err := l.cache.Replace(ctx, fingerprint, tracks, len(l.index)); err != nil {
		// Cache persistence is best effort; the in-memory corpus is intact.
		l.logger.Warn("failed to persist corpus cache",
			logging.Args(logging.Error(err))...)
	}

	l.logger.Info("corpus parsed from source",
		logging.Int("track_count", len(l.tracks)),
		logging.Int("index_count", len(l.index)))
	return nil
}

// buildIndex maps track ids to row positions. Duplicate ids keep the last
// occurrence.
func buildIndex(tracks []Track) map[string]int {
	index := make(map[string]int, len(tracks))
	for pos, track := range tracks {
		if strings.TrimSpace(track.ID) == "" {
			continue
		}
		index[track.ID] = pos
	}
	return index
}

// Features returns the audio descriptors for a known track id. A false
// return means the track is not in the corpus, never an error.
func (l *Loader) Features(trackID string) (Track, bool) {
	pos, ok := l.index[trackID]
	if !ok {
		return Track{}, false
	}
	return l.tracks[pos], true
}

// Records returns the loaded corpus rows in source order.
func (l *Loader) Records() []Track {
	return l.tracks
}

// Len returns the number of loaded rows.
func (l *Loader) Len() int {
	return len(l.tracks)
}

// SearchByGenre returns tracks whose genre label matches exactly, in source
// order, truncated to limit.
func (l *Loader) SearchByGenre(genre string, limit int) []Track {
	var matches []Track
	for _, track := range l.tracks {
		if track.Genre != genre {
			continue
		}
		matches = append(matches, track)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches
}

// HighValence returns tracks with valence at or above min.
func (l *Loader) HighValence(min float64, limit int) []Track {
	return l.filterValence(func(v float64) bool { return v >= min }, limit)
}

// LowValence returns tracks with valence at or below max.
func (l *Loader) LowValence(max float64, limit int) []Track {
	return l.filterValence(func(v float64) bool { return v <= max }, limit)
}

func (l *Loader) filterValence(keep func(float64) bool, limit int) []Track {
	var matches []Track
	for _, track := range l.tracks {
		if !keep(track.Valence) {
			continue
		}
		matches = append(matches, track)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches
}

// Stats computes aggregate corpus statistics.
func (l *Loader) Stats() Stats {
	if len(l.tracks) == 0 {
		return Stats{}
	}

	genres := map[string]struct{}{}
	var valenceSum, energySum, tempoSum float64
	var valenceN, energyN, tempoN int
	for _, track := range l.tracks {
		if track.Genre != "" {
			genres[track.Genre] = struct{}{}
		}
		if !math.IsNaN(track.Valence) {
			valenceSum += track.Valence
			valenceN++
		}
		if !math.IsNaN(track.Energy) {
			energySum += track.Energy
			energyN++
		}
		if !math.IsNaN(track.Tempo) {
			tempoSum += track.Tempo
			tempoN++
		}
	}

	genreList := make([]string, 0, len(genres))
	for genre := range genres {
		genreList = append(genreList, genre)
	}
	sort.Strings(genreList)

	return Stats{
		TotalTracks:  len(l.tracks),
		UniqueGenres: len(genreList),
		Genres:       genreList,
		ValenceMean:  safeMean(valenceSum, valenceN),
		EnergyMean:   safeMean(energySum, energyN),
		TempoMean:    safeMean(tempoSum, tempoN),
	}
}

func safeMean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
