package catalog

import "time"

// Status records the outcome of one file within a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one batch invocation over a directory tree.
type Run struct {
	ID         string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Failed     int
}

// Completed reports whether the run was finished (rather than interrupted).
func (r Run) Completed() bool {
	return !r.FinishedAt.IsZero()
}

// FileResult is the outcome for one project file inside a run.
type FileResult struct {
	RunID      string
	Path       string
	Format     string
	Status     Status
	Error      string
	Document   string
	RecordedAt time.Time
}
