package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"moodcue/internal/config"
	"moodcue/internal/corpus"
	"moodcue/internal/features"
	"moodcue/internal/logging"
	"moodcue/internal/recommend"
	"moodcue/internal/sessions"
)

// commandContext memoizes the expensive shared state behind the command
// tree: the resolved configuration, the logger, and the fully built
// recommendation engine.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	logger  *slog.Logger
	logErr  error

	engineOnce   sync.Once
	loader       *corpus.Loader
	preprocessor *features.Preprocessor
	engine       *recommend.Engine
	engineErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logErr = err
			return
		}
		outputs := []string{"stderr"}
		if logPath := cfg.LogPath(); logPath != "" {
			outputs = []string{logPath}
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
		if err != nil {
			c.logErr = fmt.Errorf("initialize logging: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.logErr
}

// ensureEngine runs the full initialization chain once: corpus load,
// feature preprocessing, engine construction. Subsequent commands within
// the same invocation reuse the built engine.
func (c *commandContext) ensureEngine(ctx context.Context) (*recommend.Engine, error) {
	c.engineOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.engineErr = err
			return
		}
		logger, err := c.ensureLogger()
		if err != nil {
			c.engineErr = err
			return
		}

		loader, err := corpus.NewLoader(cfg.Paths.CorpusPath, cfg.Paths.CacheDir, logger)
		if err != nil {
			c.engineErr = fmt.Errorf("open corpus loader: %w", err)
			return
		}
		if err := loader.Load(ctx); err != nil {
			c.engineErr = fmt.Errorf("load corpus: %w", err)
			return
		}
		c.loader = loader

		c.preprocessor = features.NewPreprocessor(loader, cfg.Paths.CacheDir, logger)
		built, err := c.preprocessor.Run(ctx)
		if err != nil {
			c.engineErr = fmt.Errorf("preprocess corpus: %w", err)
			return
		}

		engine, err := recommend.New(built, logger)
		if err != nil {
			c.engineErr = fmt.Errorf("construct engine (set corpus_path in the config, see `moodcue config init`): %w", err)
			return
		}
		c.engine = engine
	})
	return c.engine, c.engineErr
}

// withSessionStore opens the session database, runs fn, and closes it.
func (c *commandContext) withSessionStore(fn func(sessions.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := sessions.Open(cfg.SessionDBPath())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// personalize replays a user's stored sessions into the engine so a
// following query can blend their learned centroid.
func (c *commandContext) personalize(ctx context.Context, engine *recommend.Engine, userID string) error {
	return c.withSessionStore(func(store sessions.Store) error {
		stored, err := store.UserSessions(ctx, userID, "", 0)
		if err != nil {
			return fmt.Errorf("load sessions for %s: %w", userID, err)
		}
		if len(stored) == 0 {
			return nil
		}
		return engine.LearnFromSessions(userID, sessions.ForLearning(stored))
	})
}
