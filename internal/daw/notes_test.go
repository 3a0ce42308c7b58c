package daw_test

import (
	"testing"

	"dawprobe/internal/daw"
)

func TestNoteNameToMIDI(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"C4", 60},
		{"C5", 72},
		{"C#5", 73},
		{"Db5", 73},
		{"A4", 69},
		{"G9", 127},
		{"c4", 60},
		{"B-1", 11},
		{"C12", 127},
		{"C-5", 0},
	}
	for _, tc := range cases {
		got, err := daw.NoteNameToMIDI(tc.name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, got, tc.want)
		}
	}
}

func TestNoteNameToMIDIRejectsGarbage(t *testing.T) {
	for _, name := range []string{"", "H4", "C", "4", "sharp", "C##4"} {
		if _, err := daw.NoteNameToMIDI(name); err == nil {
			t.Fatalf("%q: expected error", name)
		}
	}
}

func TestMIDIToNoteNameRoundTrip(t *testing.T) {
	for _, note := range []int{0, 11, 60, 73, 127} {
		name := daw.MIDIToNoteName(note)
		got, err := daw.NoteNameToMIDI(name)
		if err != nil {
			t.Fatalf("%d -> %q: %v", note, name, err)
		}
		if got != note {
			t.Fatalf("round trip %d -> %q -> %d", note, name, got)
		}
	}
}
