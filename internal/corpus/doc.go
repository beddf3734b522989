// Package corpus loads the offline track corpus and keeps a validated
// on-disk cache of it.
//
// The corpus is a delimited CSV of tracks with precomputed audio
// descriptors (valence, energy, tempo, and friends). Parsing a large CSV on
// every process start is wasteful, so the loader keeps the parsed rows and
// the id to row-position index in a SQLite cache keyed by a content
// fingerprint of the source file. A matching fingerprint restores the rows
// directly; a mismatch or an unreadable cache triggers a full reparse and an
// atomic cache rewrite guarded by a cross-process file lock.
//
// A missing source file is not fatal. The loader runs in an empty state
// where every lookup misses, and callers fall back to genre-based feature
// estimation.
package corpus
