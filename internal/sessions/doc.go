// Package sessions persists mood-tagging sessions. Each session records
// that a user played a track while in a declared mood at some intensity;
// the recommendation engine consumes them to learn per-user taste
// centroids. A SQLite store backs normal operation and an in-memory store
// serves tests and configurations without a database path.
package sessions
