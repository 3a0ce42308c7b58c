// Package daw defines the canonical, format-independent project metadata
// model shared by every dialect parser.
//
// The types here are immutable snapshots: a parser builds them once per
// Parse call and hands ownership to the caller. Every numeric and string
// field has a safe default so a record with missing source data is still a
// fully constructed value, never a partially filled one. Out-of-range MIDI
// values are clamped at construction rather than propagated.
//
// The package also owns the serialized document forms (summary counts and
// the detailed entity dump) and the note-name conversion helpers used by
// dialects that store pitch as text.
package daw
