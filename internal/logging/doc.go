// Package logging assembles the structured slog loggers used across
// dawprobe.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so batch code automatically tags
// log lines with run IDs and source paths. A no-op logger is provided for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every
// component emits data with the same shape.
package logging
