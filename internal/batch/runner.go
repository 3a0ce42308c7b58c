package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dawprobe/internal/catalog"
	"dawprobe/internal/config"
	"dawprobe/internal/daw"
	"dawprobe/internal/dawparse"
	"dawprobe/internal/fileutil"
	"dawprobe/internal/logging"
	"dawprobe/internal/textutil"
)

// ErrOutputLocked indicates another run is already writing to the output
// directory.
var ErrOutputLocked = errors.New("output directory locked by another run")

// Result is the outcome for one project file.
type Result struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Document string `json:"document,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Failed reports whether the file could not be extracted.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Summary aggregates a complete run.
type Summary struct {
	RunID      string    `json:"run_id"`
	Root       string    `json:"root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Results    []Result  `json:"files"`

	// SummaryPath is where the summary document itself was written.
	SummaryPath string `json:"-"`
}

// Runner extracts every project file under a root directory.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *catalog.Store
	statfs statfsFunc
}

// NewRunner builds a runner. The catalog store is optional; passing nil
// skips run history.
func NewRunner(cfg *config.Config, logger *slog.Logger, store *catalog.Store) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "batch"),
		store:  store,
		statfs: realStatfs,
	}
}

// Run walks root, extracts each discovered project, and writes one JSON
// document per file plus a run summary into the output directory.
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	outputDir := r.cfg.Paths.OutputDir
	if err := checkFreeSpace(r.statfs, outputDir, r.cfg.Extraction.MinFreeMiB); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(outputDir, ".dawprobe.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !held {
		return nil, ErrOutputLocked
	}
	defer func() { _ = lock.Unlock() }()

	files, err := dawparse.FindProjectFiles(root, r.cfg.Extraction.Extensions)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		Root:      root,
		StartedAt: time.Now().UTC(),
	}
	r.logger.Info("batch run started",
		logging.RunID(summary.RunID),
		logging.Path(root),
		logging.Int("files", len(files)))

	if r.store != nil {
		if err := r.store.BeginRun(ctx, summary.RunID, root); err != nil {
			return nil, err
		}
	}

	used := make(map[string]bool)
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		res := r.extractOne(path, outputDir, used)
		summary.Results = append(summary.Results, res)
		summary.Total++
		if res.Failed() {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		if r.store != nil {
			record := catalog.FileResult{
				RunID:    summary.RunID,
				Path:     res.Path,
				Format:   res.Format,
				Status:   catalog.StatusSucceeded,
				Document: res.Document,
				Error:    res.Error,
			}
			if res.Failed() {
				record.Status = catalog.StatusFailed
			}
			if err := r.store.RecordResult(ctx, record); err != nil {
				r.logger.Warn("failed to record file result", logging.Path(res.Path), logging.Error(err))
			}
		}
	}

	summary.FinishedAt = time.Now().UTC()
	if r.store != nil {
		if err := r.store.FinishRun(ctx, summary.RunID, summary.Total, summary.Succeeded, summary.Failed); err != nil {
			r.logger.Warn("failed to finish run record", logging.RunID(summary.RunID), logging.Error(err))
		}
	}

	summary.SummaryPath = filepath.Join(outputDir, "run-"+summary.RunID+".json")
	if err := r.writeSummary(summary); err != nil {
		return nil, err
	}

	r.logger.Info("batch run finished",
		logging.RunID(summary.RunID),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) extractOne(path, outputDir string, used map[string]bool) Result {
	res := Result{Path: path, Format: string(dawparse.DetectFormat(path))}

	parser, err := dawparse.NewParser(r.logger, path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer parser.Close()

	meta, err := parser.Parse()
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var doc daw.Document
	if r.cfg.Extraction.Detailed {
		doc = daw.Detailed(meta)
	} else {
		doc = daw.Summary(meta)
	}

	docPath := uniqueDocPath(outputDir, textutil.Stem(path), used)
	if err := doc.Save(docPath); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Document = docPath

	r.logger.Info("extracted project",
		logging.Path(path),
		logging.String(logging.FieldFormat, res.Format),
		logging.Int("notes", meta.NoteCount()))
	return res
}

func (r *Runner) writeSummary(summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	if err := fileutil.WriteFileAtomic(summary.SummaryPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

// uniqueDocPath picks <stem>.json, suffixing a counter when two projects
// in one run share a stem.
func uniqueDocPath(dir, stem string, used map[string]bool) string {
	candidate := stem
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", stem, n)
	}
	used[candidate] = true
	return filepath.Join(dir, candidate+".json")
}
