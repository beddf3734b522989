// Package config loads, normalizes, and validates moodcue configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and recommendation pipeline need: corpus and cache locations,
// ranking defaults, session store placement, and log output settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
