package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dawprobe/internal/config"
	"dawprobe/internal/testsupport"
)

const liveSet = `<?xml version="1.0" encoding="UTF-8"?>
<Ableton Creator="Ableton Live 11.0" MajorVersion="5">
  <LiveSet>
    <Tracks>
      <MidiTrack Id="1">
        <Name><EffectiveName Value="Keys"/></Name>
      </MidiTrack>
    </Tracks>
  </LiveSet>
</Ableton>`

// writeTestConfig renders cfg to a TOML file so commands load it via --config.
func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// runCLI executes the root command with args and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestFormatsCommandListsDialects(t *testing.T) {
	out, err := runCLI(t, "formats")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	for _, want := range []string{".als", ".flp", ".logicx"} {
		requireContains(t, out, want)
	}
}

func TestExtractCommandEmitsDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)
	project := testsupport.WriteAbletonSet(t, t.TempDir(), "keys.als", liveSet)

	out, err := runCLI(t, "--config", cfgPath, "extract", project)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, `"format": "ableton"`)
	requireContains(t, out, `"version": "11.0"`)
	requireContains(t, out, `"title": "Keys"`)
}

func TestExtractCommandRejectsUnknownExtension(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	path := filepath.Join(t.TempDir(), "song.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := runCLI(t, "--config", cfgPath, "extract", path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestBatchCommandFailsWhenAnyFileFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	root := t.TempDir()
	testsupport.WriteAbletonSet(t, root, "good.als", liveSet)
	if err := os.WriteFile(filepath.Join(root, "bad.flp"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}

	out, err := runCLI(t, "--config", cfgPath, "batch", root)
	if err == nil {
		t.Fatalf("expected batch to report failure, output:\n%s", out)
	}
	requireContains(t, out, "1 extracted, 1 failed")

	runsOut, err := runCLI(t, "--config", cfgPath, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, runsOut, "completed")
	// Captured output is not a terminal, so states stay uncolored.
	if strings.Contains(runsOut, "\x1b[") {
		t.Fatalf("unexpected ANSI escapes in non-terminal output:\n%s", runsOut)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config at %s: %v", target, err)
	}
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when file already exists")
	}
}

func TestExportMIDICommand(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	set := `<?xml version="1.0" encoding="UTF-8"?>
<Ableton Creator="Ableton Live 11.0">
  <LiveSet>
    <Tracks>
      <MidiTrack Id="1">
        <Name><EffectiveName Value="Keys"/></Name>
        <KeyTrack>
          <MidiKey Value="60"/>
          <Notes>
            <MidiNoteEvent Time="0" Duration="1" Velocity="100"/>
          </Notes>
        </KeyTrack>
      </MidiTrack>
    </Tracks>
  </LiveSet>
</Ableton>`
	project := testsupport.WriteAbletonSet(t, t.TempDir(), "keys.als", set)
	target := filepath.Join(t.TempDir(), "keys.mid")

	out, err := runCLI(t, "--config", cfgPath, "export-midi", project, "--output", target)
	if err != nil {
		t.Fatalf("export-midi: %v", err)
	}
	requireContains(t, out, "Wrote "+target)
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected midi file: %v", err)
	}
}
