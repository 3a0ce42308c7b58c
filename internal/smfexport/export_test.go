package smfexport_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"dawprobe/internal/daw"
	"dawprobe/internal/smfexport"
)

func testMetadata() *daw.Metadata {
	return &daw.Metadata{
		Format: daw.FormatAbleton,
		Tracks: []daw.MIDITrack{
			{
				Name: "Lead",
				Notes: []daw.MIDINote{
					daw.NewMIDINote(60, 100, 0, 1, 0, "Lead"),
					daw.NewMIDINote(64, 90, 1, 0.5, 0, "Lead"),
				},
			},
		},
		TempoChanges: []daw.TempoChange{daw.NewTempoChange(0, 128, "4/4")},
	}
}

func TestWriteProducesReadableSMF(t *testing.T) {
	var buf bytes.Buffer
	if err := smfexport.Write(&buf, testMetadata()); err != nil {
		t.Fatalf("write: %v", err)
	}

	parsed, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := len(parsed.Tracks); got != 2 {
		t.Fatalf("expected conductor plus one note track, got %d", got)
	}

	var noteOns int
	for _, ev := range parsed.Tracks[1] {
		var channel, key, velocity uint8
		if ev.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0 {
			noteOns++
		}
	}
	if noteOns != 2 {
		t.Fatalf("expected 2 note-ons, got %d", noteOns)
	}
}

func TestWriteRejectsEmptyMetadata(t *testing.T) {
	var buf bytes.Buffer
	err := smfexport.Write(&buf, &daw.Metadata{})
	if !errors.Is(err, smfexport.ErrNoTracks) {
		t.Fatalf("expected ErrNoTracks, got %v", err)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := t.TempDir() + "/out.mid"
	if err := smfexport.WriteFile(path, testMetadata()); err != nil {
		t.Fatalf("write file: %v", err)
	}
	parsed, err := smf.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(parsed.Tracks) != 2 {
		t.Fatalf("unexpected track count %d", len(parsed.Tracks))
	}
}

func TestWriteFileCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "midi", "out.mid")
	if err := smfexport.WriteFile(path, testMetadata()); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := smf.ReadFile(path); err != nil {
		t.Fatalf("read file: %v", err)
	}
}
