package daw

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Semitone offsets for the seven note letters, C = 0.
var letterSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var noteNamePattern = regexp.MustCompile(`^([A-Ga-g])([#b]?)(-?\d+)$`)

// NoteNameToMIDI converts a scientific pitch name such as "C#5" or "Db5"
// to a MIDI note number using the C4 = 60 convention. Out-of-range octaves
// clamp into 0-127. Returns an error only when the text is not a note name
// at all.
func NoteNameToMIDI(name string) (int, error) {
	m := noteNamePattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, fmt.Errorf("not a note name: %q", name)
	}
	letter := strings.ToUpper(m[1])[0]
	semitone := letterSemitones[letter]
	switch m[2] {
	case "#":
		semitone++
	case "b":
		semitone--
	}
	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, fmt.Errorf("note octave: %w", err)
	}
	return ClampMIDI((octave+1)*12 + semitone), nil
}

var sharpNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// MIDIToNoteName renders a MIDI note number as a sharp-spelled pitch name,
// the inverse of NoteNameToMIDI for in-range values.
func MIDIToNoteName(note int) string {
	note = ClampMIDI(note)
	return fmt.Sprintf("%s%d", sharpNames[note%12], note/12-1)
}
