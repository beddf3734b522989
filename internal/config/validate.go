package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.TopK <= 0 {
		return errors.New("recommend.top_k must be greater than zero")
	}
	if c.Recommend.PersonalizationWeight < 0 || c.Recommend.PersonalizationWeight > 1 {
		return errors.New("recommend.personalization_weight must be between 0 and 1")
	}
	if c.Recommend.MinSimilarity < 0 || c.Recommend.MinSimilarity > 1 {
		return errors.New("recommend.min_similarity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
