package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"dawprobe/internal/fileutil"
)

func TestHashFileStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := fileutil.HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("hash mismatch: got %s", got)
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, err := fileutil.HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := fileutil.WriteFileAtomic(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("unexpected contents: %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}
