package config

const (
	defaultCorpusPath            = "~/.local/share/moodcue/dataset.csv"
	defaultCacheDir              = "~/.cache/moodcue"
	defaultLogDir                = "~/.local/share/moodcue/logs"
	defaultSessionDBPath         = "~/.local/share/moodcue/sessions.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultTopK                  = 20
	defaultPersonalizationWeight = 0.7
	defaultMinSimilarity         = 0.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CorpusPath: defaultCorpusPath,
			CacheDir:   defaultCacheDir,
			LogDir:     defaultLogDir,
		},
		Recommend: Recommend{
			TopK:                  defaultTopK,
			PersonalizationWeight: defaultPersonalizationWeight,
			MinSimilarity:         defaultMinSimilarity,
		},
		Sessions: Sessions{
			DBPath: defaultSessionDBPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
