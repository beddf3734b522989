// Package features transforms raw corpus rows into the normalized numeric
// feature space the recommender ranks in.
//
// The pipeline is total and deterministic over the corpus: incomplete rows
// are dropped, categorical descriptors are encoded (binary mode, one-hot
// key and time signature), continuous descriptors are normalized onto
// comparable ranges, and the resulting feature table is standardized with a
// scaler fitted exactly once. The fitted scaler is part of the derived
// corpus and must be reused unchanged for every later vector placed into
// the same space; refitting would silently invalidate every stored
// comparison.
//
// The feature set is an explicit, versioned schema rather than whatever
// numeric columns happen to survive, so a source-format change surfaces as
// a loud version mismatch instead of silent feature drift.
//
// The derived corpus persists as a set of cache artifacts validated
// all-or-nothing: when all of them load cleanly the pipeline is skipped
// entirely, and any missing or unreadable member forces a full recompute
// and a fresh persist.
package features
