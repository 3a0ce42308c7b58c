package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"dawprobe/internal/catalog"
	"dawprobe/internal/daw"
	"dawprobe/internal/logging"
	"dawprobe/internal/testsupport"
)

const minimalSet = `<?xml version="1.0" encoding="UTF-8"?>
<Ableton Creator="Ableton Live 11.0" MajorVersion="5">
  <LiveSet>
    <Tracks>
    </Tracks>
  </LiveSet>
</Ableton>`

func TestRunExtractsAndRecordsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer store.Close()

	root := t.TempDir()
	testsupport.WriteAbletonSet(t, root, "good.als", minimalSet)
	badPath := filepath.Join(root, "bad.flp")
	if err := os.WriteFile(badPath, []byte("not an flp"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}

	runner := NewRunner(cfg, logging.NewNop(), store)
	summary, err := runner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Total != 2 || summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}

	var good, bad *Result
	for i := range summary.Results {
		switch filepath.Base(summary.Results[i].Path) {
		case "good.als":
			good = &summary.Results[i]
		case "bad.flp":
			bad = &summary.Results[i]
		}
	}
	if good == nil || bad == nil {
		t.Fatalf("missing results: %+v", summary.Results)
	}
	if good.Failed() {
		t.Fatalf("good file failed: %s", good.Error)
	}
	if !bad.Failed() {
		t.Fatal("bad file should have failed")
	}

	doc, err := daw.LoadDocument(good.Document)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	if doc.Format != daw.FormatAbleton {
		t.Fatalf("unexpected document format: %q", doc.Format)
	}

	if _, err := os.Stat(summary.SummaryPath); err != nil {
		t.Fatalf("run summary not written: %v", err)
	}

	results, err := store.ResultsForRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("results for run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 catalog results, got %d", len(results))
	}
}

func TestRunFailsWhenDiskIsFull(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Extraction.MinFreeMiB = 64

	runner := NewRunner(cfg, logging.NewNop(), nil)
	runner.statfs = func(string) (uint64, error) { return 1024, nil }

	_, err := runner.Run(context.Background(), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "insufficient free space") {
		t.Fatalf("expected free-space error, got %v", err)
	}
}

func TestRunRefusesLockedOutputDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	held := flock.New(filepath.Join(cfg.Paths.OutputDir, ".dawprobe.lock"))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-acquire lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = held.Unlock() }()

	runner := NewRunner(cfg, logging.NewNop(), nil)
	_, err = runner.Run(context.Background(), t.TempDir())
	if !errors.Is(err, ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

func TestUniqueDocPathSuffixesCollisions(t *testing.T) {
	used := make(map[string]bool)
	first := uniqueDocPath("/out", "song", used)
	second := uniqueDocPath("/out", "song", used)
	if first != filepath.Join("/out", "song.json") {
		t.Fatalf("unexpected first path: %s", first)
	}
	if second != filepath.Join("/out", "song-2.json") {
		t.Fatalf("unexpected second path: %s", second)
	}
}
