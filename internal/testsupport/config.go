package testsupport

import (
	"path/filepath"
	"testing"

	"moodcue/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CorpusPath = filepath.Join(base, "dataset.csv")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Sessions.DBPath = filepath.Join(base, "sessions.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCorpusPath overrides the corpus source location on the test config.
func WithCorpusPath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.CorpusPath = path
	}
}

// WithTopK overrides the default result count on the test config.
func WithTopK(topK int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Recommend.TopK = topK
	}
}

// WithPersonalizationWeight overrides the centroid blend weight.
func WithPersonalizationWeight(weight float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Recommend.PersonalizationWeight = weight
	}
}
