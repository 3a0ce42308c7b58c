// Package catalog persists batch run history in SQLite. Each run records
// the files it visited and the per-file outcome so past extractions can be
// inspected from the CLI.
package catalog
