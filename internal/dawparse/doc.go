// Package dawparse extracts canonical project metadata from DAW project
// files in three unrelated container formats: Ableton Live sets (zip-packed
// XML), FL Studio projects (a versioned binary event stream), and Logic Pro
// bundles (a directory of loose XML fragments).
//
// Each dialect implements the Parser contract. Opening the container is the
// only step allowed to fail hard; the seven per-category extraction passes
// are isolated so a malformed block in one category degrades to an empty
// collection and a warning instead of aborting the parse. Schema drift
// between format versions is handled by alias tables: ordered lists of
// plausible element and attribute names consulted first-match-wins, so the
// fallback chains are data rather than branching code.
//
// A parser instance is single-use: one file, one Parse, results owned by
// the caller.
package dawparse
