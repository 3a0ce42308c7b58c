package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("parsed project", Component("batch"), Path("/tmp/a.als"), Int("clips", 3))

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Fatalf("missing level: %q", out)
	}
	if !strings.Contains(out, "[batch]") {
		t.Fatalf("component not promoted to header: %q", out)
	}
	if !strings.Contains(out, "- path: /tmp/a.als") {
		t.Fatalf("missing field line: %q", out)
	}
	if !strings.Contains(out, "- clips: 3") {
		t.Fatalf("missing int field: %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be suppressed at warn level: %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatal("warn line missing")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("nothing happens")
}
