package flp_test

import (
	"strings"
	"testing"

	"dawprobe/internal/flp"
	"dawprobe/internal/testsupport"
)

func TestDecodeBytesReadsHeaderAndEvents(t *testing.T) {
	builder := testsupport.NewFLPBuilder(96).
		String(flp.EvVersion, "20.8.3").
		String(flp.EvProjectTitle, "Night Drive").
		DWord(flp.EvFineTempo, 140500).
		Word(flp.EvNewChannel, 0).
		String(flp.EvChannelName, "Kick").
		String(flp.EvSampleFileName, `Samples\kick.wav`).
		Word(flp.EvNewPattern, 1).
		String(flp.EvPatternName, "Main Beat").
		Text(flp.EvPatternNotes, testsupport.NoteRecord(0, 0, 96, 60, 100))

	project, err := flp.DecodeBytes(builder.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if project.PPQ != 96 {
		t.Fatalf("ppq = %d, want 96", project.PPQ)
	}
	if project.Version != "20.8.3" {
		t.Fatalf("version = %q", project.Version)
	}
	if project.Title != "Night Drive" {
		t.Fatalf("title = %q", project.Title)
	}
	if project.Tempo != 140.5 {
		t.Fatalf("tempo = %v, want 140.5", project.Tempo)
	}

	if len(project.Channels) != 1 {
		t.Fatalf("channels = %d, want 1", len(project.Channels))
	}
	ch := project.Channels[0]
	if ch.Name != "Kick" || ch.SampleFile != `Samples\kick.wav` {
		t.Fatalf("unexpected channel: %+v", ch)
	}

	if len(project.Patterns) != 1 {
		t.Fatalf("patterns = %d, want 1", len(project.Patterns))
	}
	pat := project.Patterns[0]
	if pat.Name != "Main Beat" || pat.Index != 1 {
		t.Fatalf("unexpected pattern: %+v", pat)
	}
	if len(pat.Notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(pat.Notes))
	}
	note := pat.Notes[0]
	if note.Key != 60 || note.Velocity != 100 || note.Duration != 96 {
		t.Fatalf("unexpected note: %+v", note)
	}
}

func TestDecodeBytesCoarseTempoFallback(t *testing.T) {
	builder := testsupport.NewFLPBuilder(96).Word(flp.EvTempoCoarse, 128)
	project, err := flp.DecodeBytes(builder.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if project.Tempo != 128 {
		t.Fatalf("tempo = %v, want 128", project.Tempo)
	}
}

func TestDecodeBytesRejectsBadMagic(t *testing.T) {
	if _, err := flp.DecodeBytes([]byte("XXXX....junk payload")); err == nil {
		t.Fatal("expected error for missing header")
	} else if !strings.Contains(err.Error(), "FLhd") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeBytesRejectsTruncatedEvent(t *testing.T) {
	full := testsupport.NewFLPBuilder(96).DWord(flp.EvFineTempo, 140500).Bytes()
	truncated := full[:len(full)-2]
	if _, err := flp.DecodeBytes(truncated); err == nil {
		t.Fatal("expected error for truncated event")
	}
}

func TestDecodeBytesRejectsOversizedTextLength(t *testing.T) {
	// A text event claiming a 2^63-1 byte payload: the nine-byte varint
	// must fail the bounds check, not reach the allocator.
	body := []byte{flp.EvVersion, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}
	image := []byte("FLhd")
	image = append(image, 6, 0, 0, 0)        // header length
	image = append(image, 0, 0, 1, 0, 96, 0) // format, channels, ppq
	image = append(image, []byte("FLdt")...)
	image = append(image, byte(len(body)), 0, 0, 0)
	image = append(image, body...)

	_, err := flp.DecodeBytes(image)
	if err == nil {
		t.Fatal("expected error for oversized text length")
	}
	if !strings.Contains(err.Error(), "bad length") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPlaylistPatternRef(t *testing.T) {
	item := flp.PlaylistItem{ItemIndex: 20481}
	id, ok := item.PatternRef()
	if !ok || id != 1 {
		t.Fatalf("PatternRef = %d,%v, want 1,true", id, ok)
	}
	if _, ok := (flp.PlaylistItem{ItemIndex: 3}).PatternRef(); ok {
		t.Fatal("channel item misread as pattern")
	}
}

func TestEventTextDecodesUTF16(t *testing.T) {
	raw := []byte{'H', 0, 'i', 0, 0, 0}
	ev := flp.Event{ID: flp.EvProjectTitle, Data: raw}
	if got := ev.Text(); got != "Hi" {
		t.Fatalf("Text() = %q, want Hi", got)
	}
}

func TestEventTextStripsTrailingNul(t *testing.T) {
	ev := flp.Event{ID: flp.EvVersion, Data: []byte("12.1\x00")}
	if got := ev.Text(); got != "12.1" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestLongTextUsesMultiByteLength(t *testing.T) {
	comment := strings.Repeat("a", 200)
	builder := testsupport.NewFLPBuilder(96).String(flp.EvProjectComment, comment)
	project, err := flp.DecodeBytes(builder.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if project.Comment != comment {
		t.Fatalf("comment length = %d, want 200", len(project.Comment))
	}
}
