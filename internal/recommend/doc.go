// Package recommend ranks the feature corpus by cosine similarity to a
// mood vector.
//
// Each supported mood has a fixed prototype: target values over the
// mood-relevant feature dimensions, expanded to full dimensionality with a
// representative corpus row and pushed through the corpus scaler so it
// lives in the same space as the feature matrix. Personalization learns an
// intensity-weighted centroid per (user, mood) pair from logged tagging
// sessions and blends it with the prototype before ranking.
//
// The corpus handed to the engine is immutable; the per-user centroid map
// is the only mutable state and is replaced whole-vector under a lock, so
// any number of concurrent recommendation reads are safe alongside
// learning calls for other users.
package recommend
