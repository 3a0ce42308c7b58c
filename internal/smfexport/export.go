package smfexport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"dawprobe/internal/daw"
	"dawprobe/internal/fileutil"
)

// ticksPerQuarter is the export resolution. Note positions arrive in
// beats, so one beat maps to one quarter note.
const ticksPerQuarter = 480

// ErrNoTracks indicates the metadata carries no MIDI tracks to export.
var ErrNoTracks = errors.New("no MIDI tracks to export")

// event is one message at an absolute tick, pre-delta-encoding.
type event struct {
	tick    uint32
	noteOff bool
	message smf.Message
}

// Write renders m's MIDI tracks as a format-1 SMF: a conductor track with
// the tempo map followed by one track per extracted MIDI track.
func Write(w io.Writer, m *daw.Metadata) error {
	if m == nil || len(m.Tracks) == 0 {
		return ErrNoTracks
	}

	out := smf.NewSMF1()
	out.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	out.Add(conductorTrack(m))
	for _, track := range m.Tracks {
		out.Add(noteTrack(track))
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("write midi file: %w", err)
	}
	return nil
}

// WriteFile renders the export to path, creating parent directories as
// needed.
func WriteFile(path string, m *daw.Metadata) error {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, m); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func conductorTrack(m *daw.Metadata) smf.Track {
	events := make([]event, 0, len(m.TempoChanges)+1)
	for _, change := range m.TempoChanges {
		events = append(events, event{
			tick:    beatsToTicks(change.Time),
			message: smf.MetaTempo(change.BPM),
		})
	}
	if len(events) == 0 {
		events = append(events, event{message: smf.MetaTempo(daw.DefaultTempo)})
	}

	track := smf.Track{}
	track = append(track, smf.Event{Message: smf.MetaTrackSequenceName(string(m.Format))})
	appendDeltaEncoded(&track, events)
	track.Close(0)
	return track
}

func noteTrack(t daw.MIDITrack) smf.Track {
	events := make([]event, 0, len(t.Notes)*2)
	for _, note := range t.Notes {
		channel := uint8(note.Channel)
		start := beatsToTicks(note.Start)
		end := beatsToTicks(note.Start + note.Duration)
		if end <= start {
			end = start + 1
		}
		events = append(events, event{
			tick:    start,
			message: smf.Message(midi.NoteOn(channel, uint8(note.Note), uint8(note.Velocity))),
		})
		events = append(events, event{
			tick:    end,
			noteOff: true,
			message: smf.Message(midi.NoteOff(channel, uint8(note.Note))),
		})
	}

	track := smf.Track{}
	track = append(track, smf.Event{Message: smf.MetaTrackSequenceName(t.Name)})
	appendDeltaEncoded(&track, events)
	track.Close(0)
	return track
}

// appendDeltaEncoded sorts events by tick, note-offs first at equal ticks
// so re-struck notes do not cancel themselves, then delta-encodes.
func appendDeltaEncoded(track *smf.Track, events []event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].noteOff && !events[j].noteOff
	})
	var clock uint32
	for _, ev := range events {
		*track = append(*track, smf.Event{Delta: ev.tick - clock, Message: ev.message})
		clock = ev.tick
	}
}

func beatsToTicks(beats float64) uint32 {
	if beats < 0 {
		return 0
	}
	return uint32(beats*ticksPerQuarter + 0.5)
}
