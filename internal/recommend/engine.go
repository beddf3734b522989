package recommend

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"moodcue/internal/fallback"
	"moodcue/internal/features"
	"moodcue/internal/logging"
)

// Ranking defaults applied by DefaultQuery.
const (
	DefaultTopK                  = 20
	DefaultPersonalizationWeight = 0.7
)

// Session is one logged mood-tagging event, read-only input to learning.
type Session struct {
	TrackID   string
	Mood      string
	Intensity int // 0-100; 0 means unrecorded and falls back to a 0.5 weight
}

// Query describes one recommendation request.
type Query struct {
	Mood                  string
	TopK                  int
	UserID                string
	PersonalizationWeight float64
	MinSimilarity         float64
}

// DefaultQuery returns a query for mood with repository defaults.
func DefaultQuery(mood string) Query {
	return Query{
		Mood:                  mood,
		TopK:                  DefaultTopK,
		PersonalizationWeight: DefaultPersonalizationWeight,
	}
}

// Recommendation is one ranked result.
type Recommendation struct {
	RowIndex          int
	ID                string
	Name              string
	Artist            string
	Album             string
	Genre             string
	Popularity        int
	Similarity        float64
	SimilarityPercent float64
}

// Engine ranks the feature corpus against mood vectors. The corpus is
// immutable after construction; the centroid map is the only mutable state.
type Engine struct {
	corpus *features.Corpus
	logger *slog.Logger
	index  map[string]int // track id to feature-matrix row

	mu        sync.RWMutex
	centroids map[string]map[string][]float64 // user id -> mood -> vector
}

// New constructs an engine over a built feature corpus. An empty corpus is
// a fatal precondition violation, not a degraded mode.
func New(corpus *features.Corpus, logger *slog.Logger) (*Engine, error) {
	if corpus == nil || corpus.Rows() == 0 {
		return nil, wrapf(ErrNotReady, "feature corpus is empty")
	}

	index := make(map[string]int, len(corpus.Meta))
	for row, meta := range corpus.Meta {
		if strings.TrimSpace(meta.ID) == "" {
			continue
		}
		index[meta.ID] = row
	}

	return &Engine{
		corpus:    corpus,
		logger:    logging.NewComponentLogger(logger, "recommender"),
		index:     index,
		centroids: map[string]map[string][]float64{},
	}, nil
}

// prototypeVector expands a mood's fixed targets to full dimensionality:
// start from a representative corpus row, override the mood-relevant
// dimensions, and push the result through the corpus scaler so it occupies
// the same space as the feature matrix.
func (e *Engine) prototypeVector(mood string) ([]float64, error) {
	targets, ok := moodPrototypes[mood]
	if !ok {
		return nil, wrapf(ErrValidation, "unknown mood %q, must be one of %v", mood, Moods())
	}

	vector := make([]float64, e.corpus.Dim())
	copy(vector, e.corpus.Cleaned[0])
	for column, value := range targets {
		idx, ok := e.corpus.Schema.Index(column)
		if !ok {
			return nil, wrapf(ErrNotReady, "schema missing prototype column %q", column)
		}
		vector[idx] = value
	}

	return e.corpus.Scaler.Transform(vector)
}

// LearnFromSessions computes intensity-weighted mood centroids for a user.
// Sessions referencing tracks outside the corpus are skipped silently; a
// mood whose sessions all miss gets no centroid and keeps unpersonalized
// behavior. Existing centroids for the same (user, mood) are overwritten.
func (e *Engine) LearnFromSessions(userID string, sessions []Session) error {
	for _, session := range sessions {
		if session.Intensity < 0 || session.Intensity > 100 {
			return wrapf(ErrValidation, "session intensity %d outside [0,100]", session.Intensity)
		}
	}

	byMood := map[string][]Session{}
	for _, session := range sessions {
		mood, ok := CanonicalMood(session.Mood)
		if !ok {
			continue
		}
		byMood[mood] = append(byMood[mood], session)
	}

	learned := map[string][]float64{}
	for mood, moodSessions := range byMood {
		var vectors [][]float64
		var weights []float64
		skipped := 0
		for _, session := range moodSessions {
			row, ok := e.index[session.TrackID]
			if !ok {
				skipped++
				continue
			}
			weight := float64(session.Intensity) / 100.0
			if session.Intensity == 0 {
				weight = 0.5
			}
			vectors = append(vectors, e.corpus.Matrix[row])
			weights = append(weights, weight)
		}
		if len(vectors) == 0 {
			e.logger.Debug("no resolvable sessions for mood",
				logging.String(logging.FieldMood, mood),
				logging.Int("skipped", skipped))
			continue
		}
		learned[mood] = weightedMean(vectors, weights)
		if skipped > 0 {
			e.logger.Debug("ignored sessions for tracks outside corpus",
				logging.String(logging.FieldMood, mood),
				logging.Int("skipped", skipped))
		}
	}

	if len(learned) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	userCentroids := e.centroids[userID]
	if userCentroids == nil {
		userCentroids = map[string][]float64{}
		e.centroids[userID] = userCentroids
	}
	for mood, centroid := range learned {
		userCentroids[mood] = centroid
	}
	return nil
}

// weightedMean averages vectors with weights normalized to sum 1. A zero
// total leaves the weights unnormalized rather than dividing by zero.
func weightedMean(vectors [][]float64, weights []float64) []float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total > 0 {
		for i := range weights {
			weights[i] /= total
		}
	}

	mean := make([]float64, len(vectors[0]))
	for i, vector := range vectors {
		for j, v := range vector {
			mean[j] += weights[i] * v
		}
	}
	return mean
}

// centroidFor returns the learned centroid for (user, mood), if any.
func (e *Engine) centroidFor(userID, mood string) ([]float64, bool) {
	if userID == "" {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	centroid, ok := e.centroids[userID][mood]
	return centroid, ok
}

// MoodRecommendations ranks the corpus for a mood, blending in the user's
// learned centroid when one exists.
func (e *Engine) MoodRecommendations(q Query) ([]Recommendation, error) {
	mood, ok := CanonicalMood(q.Mood)
	if !ok {
		return nil, wrapf(ErrValidation, "unknown mood %q, must be one of %v", q.Mood, Moods())
	}
	if q.PersonalizationWeight < 0 || q.PersonalizationWeight > 1 {
		return nil, wrapf(ErrValidation, "personalization weight %v outside [0,1]", q.PersonalizationWeight)
	}
	if q.MinSimilarity < 0 || q.MinSimilarity > 1 {
		return nil, wrapf(ErrValidation, "minimum similarity %v outside [0,1]", q.MinSimilarity)
	}

	prototype, err := e.prototypeVector(mood)
	if err != nil {
		return nil, err
	}

	target := prototype
	if centroid, ok := e.centroidFor(q.UserID, mood); ok {
		target = make([]float64, len(prototype))
		for i := range prototype {
			target[i] = q.PersonalizationWeight*centroid[i] + (1-q.PersonalizationWeight)*prototype[i]
		}
	}

	topK := q.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return e.rank(target, topK, q.MinSimilarity, -1), nil
}

// SimilarTracks ranks the corpus by similarity to one row's own vector,
// excluding the row itself.
func (e *Engine) SimilarTracks(rowIndex, topK int) ([]Recommendation, error) {
	if rowIndex < 0 || rowIndex >= e.corpus.Rows() {
		return nil, wrapf(ErrNotFound, "row index %d outside corpus of %d rows", rowIndex, e.corpus.Rows())
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return e.rank(e.corpus.Matrix[rowIndex], topK, 0, rowIndex), nil
}

// SimilarToEstimate ranks the corpus against an approximate vector for a
// track that is not in the corpus, built from generic catalog metadata by
// the fallback extractor and scaled with the corpus scaler.
func (e *Engine) SimilarToEstimate(info fallback.TrackInfo, topK int) ([]Recommendation, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	estimate := fallback.Extract(info)
	target, err := e.corpus.Scaler.Transform(estimate.Vector(e.corpus.Schema))
	if err != nil {
		return nil, wrapf(ErrNotReady, "scale fallback estimate: %v", err)
	}
	e.logger.Debug("ranking against fallback estimate",
		logging.Float64("valence", estimate.Valence),
		logging.Float64("energy", estimate.Energy))
	return e.rank(target, topK, 0, -1), nil
}

// RowForTrack resolves a track identifier to its feature-matrix row.
func (e *Engine) RowForTrack(trackID string) (int, bool) {
	row, ok := e.index[trackID]
	return row, ok
}

// rank computes cosine similarity of target against every matrix row and
// returns the topK most similar, ties broken by original row order.
// excludeRow skips one row (the query track in similar-track lookups).
func (e *Engine) rank(target []float64, topK int, minSimilarity float64, excludeRow int) []Recommendation {
	rows := e.corpus.Rows()
	order := make([]int, 0, rows)
	similarities := make([]float64, rows)
	for i := 0; i < rows; i++ {
		if i == excludeRow {
			continue
		}
		similarities[i] = cosineSimilarity(target, e.corpus.Matrix[i])
		order = append(order, i)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return similarities[order[a]] > similarities[order[b]]
	})

	// A floor of zero means no filtering, so rows with negative
	// similarity still rank.
	results := make([]Recommendation, 0, topK)
	for _, row := range order {
		if minSimilarity > 0 && similarities[row] < minSimilarity {
			continue
		}
		meta := e.corpus.Meta[row]
		results = append(results, Recommendation{
			RowIndex:          row,
			ID:                meta.ID,
			Name:              meta.Name,
			Artist:            meta.Artist,
			Album:             meta.Album,
			Genre:             meta.Genre,
			Popularity:        meta.Popularity,
			Similarity:        similarities[row],
			SimilarityPercent: math.Round(similarities[row]*1000) / 10,
		})
		if len(results) >= topK {
			break
		}
	}
	return results
}

// cosineSimilarity is the normalized dot product of a and b. A zero-norm
// vector has no direction and scores 0 against everything.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Corpus exposes the engine's underlying derived corpus for display-layer
// lookups (search, track details).
func (e *Engine) Corpus() *features.Corpus {
	return e.corpus
}
