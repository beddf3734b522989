package features

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"moodcue/internal/corpus"
	"moodcue/internal/logging"
)

// TrackMeta is the descriptive table kept row-aligned with the feature
// matrix for display and search.
type TrackMeta struct {
	ID         string
	Name       string
	Artist     string
	Album      string
	Genre      string
	Popularity int
	Explicit   bool
}

// TrackDetail is the display shape for a single row: metadata plus the
// three mood-relevant descriptors.
type TrackDetail struct {
	TrackMeta
	Valence      float64
	Energy       float64
	Danceability float64
}

// Corpus is the derived, read-only recommendation corpus: the scaled
// feature matrix, the unscaled cleaned table it came from, the fitted
// scaler, and the row-aligned metadata.
type Corpus struct {
	Schema  Schema
	Scaler  *Scaler
	Matrix  [][]float64
	Cleaned [][]float64
	Meta    []TrackMeta
	Dropped int
}

// Rows returns the number of surviving tracks.
func (c *Corpus) Rows() int { return len(c.Matrix) }

// Dim returns the feature dimensionality.
func (c *Corpus) Dim() int { return c.Schema.Dim() }

// TrackByIndex returns display details for a feature-matrix row.
func (c *Corpus) TrackByIndex(i int) (TrackDetail, bool) {
	if i < 0 || i >= len(c.Meta) {
		return TrackDetail{}, false
	}
	detail := TrackDetail{TrackMeta: c.Meta[i]}
	if idx, ok := c.Schema.Index(ColValence); ok {
		detail.Valence = c.Cleaned[i][idx]
	}
	if idx, ok := c.Schema.Index(ColEnergy); ok {
		detail.Energy = c.Cleaned[i][idx]
	}
	if idx, ok := c.Schema.Index(ColDanceability); ok {
		detail.Danceability = c.Cleaned[i][idx]
	}
	return detail, true
}

// SearchMatch is one result of a track search, carrying the row index the
// engine's similar-track lookup wants.
type SearchMatch struct {
	RowIndex int
	ID       string
	Name     string
	Artist   string
}

// SearchTracks performs case-insensitive substring matching of query
// against track name and artist. Results keep the underlying table order
// and are truncated to limit.
func (c *Corpus) SearchTracks(query string, limit int) []SearchMatch {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	var matches []SearchMatch
	for i, meta := range c.Meta {
		if !strings.Contains(strings.ToLower(meta.Name), needle) &&
			!strings.Contains(strings.ToLower(meta.Artist), needle) {
			continue
		}
		matches = append(matches, SearchMatch{
			RowIndex: i,
			ID:       meta.ID,
			Name:     meta.Name,
			Artist:   meta.Artist,
		})
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches
}

// Build runs the full preprocessing pipeline over raw corpus rows: clean,
// encode, derive, select, and scale.
func Build(tracks []corpus.Track, logger *slog.Logger) (*Corpus, error) {
	logger = logging.NewComponentLogger(logger, "features")
	schema := NewSchema()

	cleaned := make([][]float64, 0, len(tracks))
	meta := make([]TrackMeta, 0, len(tracks))
	dropped := 0
	for _, track := range tracks {
		if !track.HasAudioDescriptors() {
			dropped++
			continue
		}
		cleaned = append(cleaned, schema.Vector(track))
		meta = append(meta, TrackMeta{
			ID:         track.ID,
			Name:       track.Name,
			Artist:     track.Artists,
			Album:      track.Album,
			Genre:      track.Genre,
			Popularity: track.Popularity,
			Explicit:   track.Explicit,
		})
	}

	if len(cleaned) == 0 {
		return &Corpus{Schema: schema, Dropped: dropped}, nil
	}

	scaler, err := FitScaler(cleaned)
	if err != nil {
		return nil, err
	}
	matrix, err := scaler.TransformAll(cleaned)
	if err != nil {
		return nil, err
	}

	logger.Info("feature corpus built",
		logging.Int("rows", len(matrix)),
		logging.Int("dropped_rows", dropped),
		logging.Int("dimensions", schema.Dim()))

	return &Corpus{
		Schema:  schema,
		Scaler:  scaler,
		Matrix:  matrix,
		Cleaned: cleaned,
		Meta:    meta,
		Dropped: dropped,
	}, nil
}

// Preprocessor produces the derived corpus, reusing persisted artifacts
// when they are all present and rebuilding from the loader otherwise.
type Preprocessor struct {
	loader *corpus.Loader
	store  *Store
	logger *slog.Logger
}

// NewPreprocessor wires a preprocessor over a loaded corpus loader, caching
// derived artifacts under cacheDir.
func NewPreprocessor(loader *corpus.Loader, cacheDir string, logger *slog.Logger) *Preprocessor {
	logger = logging.NewComponentLogger(logger, "features")
	return &Preprocessor{
		loader: loader,
		store:  NewStore(cacheDir, logger),
		logger: logger,
	}
}

// Run returns the derived corpus. The reload path short-circuits the whole
// pipeline when every artifact loads; any failure there falls through to a
// full rebuild and a fresh persist.
func (p *Preprocessor) Run(ctx context.Context) (*Corpus, error) {
	if cached, err := p.store.Load(); err == nil {
		p.logger.Info("derived corpus restored from cache",
			logging.Int("rows", cached.Rows()))
		return cached, nil
	} else {
		p.logger.Debug("derived corpus cache unusable, rebuilding",
			logging.Args(logging.Error(err))...)
	}

	return p.Rebuild(ctx)
}

// Rebuild runs the full pipeline unconditionally and persists the result,
// ignoring any cached artifacts.
func (p *Preprocessor) Rebuild(ctx context.Context) (*Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	built, err := Build(p.loader.Records(), p.logger)
	if err != nil {
		return nil, fmt.Errorf("build feature corpus: %w", err)
	}

	if built.Rows() > 0 {
		if err := p.store.Save(built); err != nil {
			// Persistence is best effort; the in-memory corpus is intact.
			p.logger.Warn("failed to persist derived corpus",
				logging.Args(logging.Error(err))...)
		}
	}
	return built, nil
}
