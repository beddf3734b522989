// Package fallback estimates audio descriptors for tracks that are absent
// from the offline corpus.
//
// Only generic catalog metadata is available for such tracks: duration,
// popularity, the explicit flag, and genre tags. Valence and energy are
// estimated from genre keywords around a neutral baseline; everything else
// gets fixed neutral placeholders. The estimate never fails, it just gets
// vaguer as the input gets thinner.
package fallback
