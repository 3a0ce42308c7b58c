// Package batch walks a directory tree for project files and extracts
// each one in turn. A single failing file never aborts the run: its error
// is captured in the run summary and the walk continues. Results land as
// one JSON document per project plus a run-level summary, and every run
// is recorded in the catalog.
package batch
