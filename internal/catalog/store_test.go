package catalog_test

import (
	"context"
	"testing"

	"dawprobe/internal/catalog"
	"dawprobe/internal/testsupport"
)

func TestStoreRecordsRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.BeginRun(ctx, "run-1", "/music"); err != nil {
		t.Fatalf("begin run: %v", err)
	}
	results := []catalog.FileResult{
		{RunID: "run-1", Path: "/music/a.als", Format: "ableton", Status: catalog.StatusSucceeded, Document: "/out/a.json"},
		{RunID: "run-1", Path: "/music/b.flp", Format: "flstudio", Status: catalog.StatusFailed, Error: "corrupted file"},
	}
	for _, res := range results {
		if err := store.RecordResult(ctx, res); err != nil {
			t.Fatalf("record result: %v", err)
		}
	}
	if err := store.FinishRun(ctx, "run-1", 2, 1, 1); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.ID != "run-1" || run.Total != 2 || run.Succeeded != 1 || run.Failed != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if !run.Completed() {
		t.Fatal("run should be completed")
	}

	stored, err := store.ResultsForRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("results for run: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(stored))
	}
	if stored[0].Path != "/music/a.als" || stored[0].Status != catalog.StatusSucceeded {
		t.Fatalf("unexpected first result: %+v", stored[0])
	}
	if stored[1].Error != "corrupted file" {
		t.Fatalf("failure message not stored: %+v", stored[1])
	}
}

func TestFinishUnknownRunFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.FinishRun(context.Background(), "missing", 0, 0, 0); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()
}
