// Package main hosts the moodcue CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into corpus
// loading, mood recommendation, similarity lookup, track search, and
// session bookkeeping against the shared internal packages. It centralizes
// configuration resolution and engine construction so subcommands can focus
// on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
