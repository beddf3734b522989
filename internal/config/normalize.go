package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSessions(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.CorpusPath == "" {
		if value, ok := os.LookupEnv("MOODCUE_CORPUS"); ok {
			c.Paths.CorpusPath = value
		} else {
			c.Paths.CorpusPath = defaultCorpusPath
		}
	}
	if c.Paths.CorpusPath, err = expandPath(c.Paths.CorpusPath); err != nil {
		return fmt.Errorf("paths.corpus_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSessions() error {
	if strings.TrimSpace(c.Sessions.DBPath) == "" {
		c.Sessions.DBPath = defaultSessionDBPath
	}
	var err error
	if c.Sessions.DBPath, err = expandPath(c.Sessions.DBPath); err != nil {
		return fmt.Errorf("sessions.db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
