package dawparse_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dawprobe/internal/daw"
	"dawprobe/internal/dawparse"
	"dawprobe/internal/logging"
	"dawprobe/internal/testsupport"
)

const logicDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Project version="10.7.4">
  <Tracks>
    <Track name="Piano" instrument="Grand Piano">
      <MidiRegion name="Intro" position="0" length="8">
        <Note pitch="C4" position="0" duration="1" velocity="90"/>
        <Note pitch="64" position="1" duration="1"/>
      </MidiRegion>
      <Plugin name="Space Designer" type="au" id="p1" enabled="true">
        <Parameter name="Mix" value="0.4" unit="%"/>
      </Plugin>
    </Track>
  </Tracks>
  <TempoEvent bpm="90" position="0" numerator="3" denominator="4"/>
  <KeySignature key="C" scale="major" position="0"/>
  <AudioFile path="Audio Files/take1.wav" start="0" duration="4"/>
  <Automation parameter="volume" id="a1">
    <Point time="0" value="0.5" curve="bezier"/>
    <Point time="4" value="0.8"/>
  </Automation>
</Project>`

func writeLogicFixture(t *testing.T, docName string) string {
	t.Helper()
	return testsupport.WriteLogicBundle(t, t.TempDir(), "Song.logicx", map[string]string{
		docName: logicDocument,
	})
}

func TestLogicProFullProject(t *testing.T) {
	bundle := writeLogicFixture(t, "projectdata/main.xml")
	parser, err := dawparse.NewLogicProParser(logging.NewNop(), bundle)
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}
	defer parser.Close()

	meta, err := parser.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if meta.Version != "10.7.4" {
		t.Fatalf("version = %q", meta.Version)
	}

	if len(meta.Tracks) != 1 {
		t.Fatalf("tracks = %d", len(meta.Tracks))
	}
	track := meta.Tracks[0]
	if track.Name != "Piano" || track.Instrument != "Grand Piano" {
		t.Fatalf("unexpected track: %+v", track)
	}
	if len(track.Notes) != 2 {
		t.Fatalf("notes = %d", len(track.Notes))
	}
	// Note-name and numeric pitch spellings both resolve.
	if track.Notes[0].Note != 60 || track.Notes[1].Note != 64 {
		t.Fatalf("pitches = %d, %d", track.Notes[0].Note, track.Notes[1].Note)
	}
	if track.Notes[1].Velocity != daw.DefaultVelocity {
		t.Fatalf("missing velocity should default: %+v", track.Notes[1])
	}

	if len(meta.Arrangement.Clips) != 1 {
		t.Fatalf("clips = %d", len(meta.Arrangement.Clips))
	}
	clip := meta.Arrangement.Clips[0]
	if clip.Name != "Intro" || clip.Kind != daw.ClipMIDI || clip.Track != "Piano" {
		t.Fatalf("unexpected clip: %+v", clip)
	}
	if clip.End != 8 || meta.Arrangement.TotalLength != 8 {
		t.Fatalf("clip timing: %+v", clip)
	}

	if len(meta.TempoChanges) != 1 {
		t.Fatalf("tempo changes = %d", len(meta.TempoChanges))
	}
	if meta.TempoChanges[0].BPM != 90 || meta.TempoChanges[0].TimeSignature != "3/4" {
		t.Fatalf("unexpected tempo: %+v", meta.TempoChanges[0])
	}

	if len(meta.KeyChanges) != 1 || meta.KeyChanges[0].Key != "C major" {
		t.Fatalf("unexpected key changes: %+v", meta.KeyChanges)
	}

	if len(meta.PluginChains) != 1 {
		t.Fatalf("plugin chains = %d", len(meta.PluginChains))
	}
	device := meta.PluginChains[0].Devices[0]
	if device.Name != "Space Designer" || device.Type != "au" || device.ID != "p1" {
		t.Fatalf("unexpected device: %+v", device)
	}
	if len(device.Parameters) != 1 || device.Parameters[0].Unit != "%" {
		t.Fatalf("unexpected parameters: %+v", device.Parameters)
	}

	if len(meta.Samples) != 1 {
		t.Fatalf("samples = %d", len(meta.Samples))
	}
	if meta.Samples[0].Path != filepath.Join(bundle, "Audio Files", "take1.wav") {
		t.Fatalf("sample path = %q", meta.Samples[0].Path)
	}

	if len(meta.Automation) != 1 {
		t.Fatalf("automation = %d", len(meta.Automation))
	}
	auto := meta.Automation[0]
	if auto.Parameter != "volume" || auto.ID != "a1" {
		t.Fatalf("unexpected automation: %+v", auto)
	}
	if auto.Points[0].Curve != daw.CurveBezier || auto.Points[1].Curve != daw.CurveLinear {
		t.Fatalf("unexpected curves: %+v", auto.Points)
	}
}

func TestLogicProDiscoversNestedDocument(t *testing.T) {
	// No file name is guaranteed; an arbitrarily named document in a
	// subdirectory must still be found.
	bundle := writeLogicFixture(t, "Alternatives/000/data.xml")
	parser, err := dawparse.NewLogicProParser(logging.NewNop(), bundle)
	if err != nil {
		t.Fatalf("nested document not discovered: %v", err)
	}
	defer parser.Close()
	if v := parser.Version(); v != "10.7.4" {
		t.Fatalf("version = %q", v)
	}
}

func TestLogicProEmptyBundleIsCorrupted(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "Empty.logicx")
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := dawparse.NewLogicProParser(logging.NewNop(), bundle)
	if !errors.Is(err, dawparse.ErrCorruptedFile) {
		t.Fatalf("expected ErrCorruptedFile, got %v", err)
	}
}

func TestLogicProPlainFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notabundle.logicx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := dawparse.NewLogicProParser(logging.NewNop(), path)
	if err == nil {
		t.Fatal("expected error for non-directory bundle")
	}
}

func TestLogicProEmptyDocumentYieldsEmptyCollections(t *testing.T) {
	bundle := testsupport.WriteLogicBundle(t, t.TempDir(), "Bare.logicx", map[string]string{
		"main.xml": `<Project></Project>`,
	})
	parser, err := dawparse.NewLogicProParser(logging.NewNop(), bundle)
	if err != nil {
		t.Fatal(err)
	}
	defer parser.Close()

	meta, err := parser.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if meta.Version != daw.UnknownVersion {
		t.Fatalf("version = %q", meta.Version)
	}
	if meta.NoteCount() != 0 || meta.Arrangement.TotalLength != 0 {
		t.Fatalf("expected empty metadata: %+v", meta)
	}
}
