// Package config loads and validates dawprobe's TOML configuration.
//
// Configuration covers the output and log directories, the extraction
// catalog database, which project extensions a batch run scans for, and
// logging format/level. Load applies defaults, expands ~ paths, and
// validates the result; a missing config file is not an error and yields
// the defaults.
package config
