package dawparse

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"dawprobe/internal/daw"
	"dawprobe/internal/fileutil"
	"dawprobe/internal/flp"
)

// FLStudioParser reads FL Studio projects through the flp decoder. The
// decoder's object graph drifts across format versions, so every pass
// tries a chain of structural hypotheses and accepts the first one that
// yields plausible data.
type FLStudioParser struct {
	logger  *slog.Logger
	path    string
	project *flp.Project

	parsed bool
	meta   *daw.Metadata
}

// NewFLStudioParser detects the format (suffix, before I/O) and decodes
// the container. Decoder failures are corrupted-file errors.
func NewFLStudioParser(logger *slog.Logger, path string) (*FLStudioParser, error) {
	if !strings.EqualFold(filepath.Ext(path), ExtFLStudio) {
		return nil, fmt.Errorf("not an fl studio project: %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat project: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("not an fl studio project: %s is a directory", path)
	}

	project, err := flp.Decode(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("stat project: %w", err)
		}
		return nil, CorruptedFileError(logger, path, "decode flp container", err)
	}
	return &FLStudioParser{logger: logger, path: path, project: project}, nil
}

func (p *FLStudioParser) Format() daw.Format { return daw.FormatFLStudio }

func (p *FLStudioParser) Version() string {
	if v := strings.TrimSpace(p.project.Version); v != "" {
		return v
	}
	return daw.UnknownVersion
}

// ticksToBeats converts the format's native PPQ tick unit to beats.
func (p *FLStudioParser) ticksToBeats(ticks uint32) float64 {
	ppq := p.project.PPQ
	if ppq <= 0 {
		ppq = flp.DefaultPPQ
	}
	return float64(ticks) / float64(ppq)
}

// MIDITracks tries three structures in priority order: notes enumerated
// off patterns, notes grouped under channel-selected blobs, and finally
// note-shaped records fished out of the generic event stream.
func (p *FLStudioParser) MIDITracks() ([]daw.MIDITrack, error) {
	if tracks := p.tracksFromPatterns(); len(tracks) > 0 {
		return tracks, nil
	}
	if tracks := p.tracksFromChannelBlobs(); len(tracks) > 0 {
		return tracks, nil
	}
	return p.tracksFromEventStream(), nil
}

func (p *FLStudioParser) tracksFromPatterns() []daw.MIDITrack {
	var tracks []daw.MIDITrack
	for _, pattern := range p.project.Patterns {
		if len(pattern.Notes) == 0 {
			continue
		}
		name := pattern.Name
		if name == "" {
			name = fmt.Sprintf("Pattern %d", pattern.Index)
		}
		track := daw.MIDITrack{
			Name:       name,
			Index:      len(tracks),
			Instrument: p.channelInstrument(pattern.Notes),
			Volume:     1.0,
		}
		for _, note := range pattern.Notes {
			track.Notes = append(track.Notes, p.convertNote(note, name))
		}
		sort.SliceStable(track.Notes, func(a, b int) bool {
			return track.Notes[a].Start < track.Notes[b].Start
		})
		tracks = append(tracks, track)
	}
	return tracks
}

// tracksFromChannelBlobs handles graphs where note blobs were written
// under a channel cursor instead of a pattern cursor, which the decoder
// leaves unattached.
func (p *FLStudioParser) tracksFromChannelBlobs() []daw.MIDITrack {
	byChannel := make(map[int][]flp.Note)
	currentChannel := -1
	inPattern := false
	for _, ev := range p.project.Events {
		switch ev.ID {
		case flp.EvNewChannel:
			currentChannel = int(ev.Value)
			inPattern = false
		case flp.EvNewPattern:
			inPattern = true
		case flp.EvPatternNotes:
			if !inPattern && currentChannel >= 0 {
				byChannel[currentChannel] = append(byChannel[currentChannel], decodeNoteRecords(ev.Data)...)
			}
		}
	}
	if len(byChannel) == 0 {
		return nil
	}

	indices := make([]int, 0, len(byChannel))
	for idx := range byChannel {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var tracks []daw.MIDITrack
	for _, idx := range indices {
		name := p.channelName(idx)
		track := daw.MIDITrack{Name: name, Index: len(tracks), Volume: 1.0}
		for _, note := range byChannel[idx] {
			track.Notes = append(track.Notes, p.convertNote(note, name))
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// tracksFromEventStream is the last resort: any blob whose shape divides
// into note records and whose contents stay in MIDI range is accepted.
func (p *FLStudioParser) tracksFromEventStream() []daw.MIDITrack {
	var notes []flp.Note
	for _, ev := range p.project.Events {
		if !ev.IsText() || ev.ID == flp.EvPatternNotes || len(ev.Data) == 0 {
			continue
		}
		candidates := decodeNoteRecords(ev.Data)
		if len(candidates) == 0 {
			continue
		}
		if notesLookPlausible(candidates) {
			notes = append(notes, candidates...)
		}
	}
	if len(notes) == 0 {
		return nil
	}
	track := daw.MIDITrack{Name: "Track 1", Index: 0, Volume: 1.0}
	for _, note := range notes {
		track.Notes = append(track.Notes, p.convertNote(note, track.Name))
	}
	sort.SliceStable(track.Notes, func(a, b int) bool {
		return track.Notes[a].Start < track.Notes[b].Start
	})
	return []daw.MIDITrack{track}
}

func decodeNoteRecords(data []byte) []flp.Note {
	if len(data) == 0 || len(data)%24 != 0 {
		return nil
	}
	r := flp.NewReader(data)
	count := len(data) / 24
	notes := make([]flp.Note, 0, count)
	for i := 0; i < count; i++ {
		base := i * 24
		pos, _ := r.U32(base)
		channel, _ := r.U16(base + 6)
		duration, _ := r.U32(base + 8)
		key, _ := r.U16(base + 12)
		midiChannel, _ := r.U8(base + 17)
		pan, _ := r.U8(base + 18)
		velocity, _ := r.U8(base + 19)
		notes = append(notes, flp.Note{
			Pos:         pos,
			Channel:     channel,
			Duration:    duration,
			Key:         key,
			MIDIChannel: midiChannel,
			Pan:         pan,
			Velocity:    velocity,
		})
	}
	return notes
}

// notesLookPlausible rejects blobs that merely divide evenly into note
// records: every key must be a MIDI pitch and at least one note must
// actually sound.
func notesLookPlausible(notes []flp.Note) bool {
	sounding := 0
	for _, note := range notes {
		if note.Key > 127 {
			return false
		}
		if note.Velocity > 0 && note.Duration > 0 {
			sounding++
		}
	}
	return sounding > 0
}

func (p *FLStudioParser) convertNote(note flp.Note, track string) daw.MIDINote {
	return daw.NewMIDINote(
		int(note.Key),
		int(note.Velocity),
		p.ticksToBeats(note.Pos),
		p.ticksToBeats(note.Duration),
		int(note.MIDIChannel),
		track,
	)
}

// channelInstrument reports the generator behind the notes' most common
// channel, when the graph knows it.
func (p *FLStudioParser) channelInstrument(notes []flp.Note) string {
	if len(notes) == 0 {
		return ""
	}
	counts := make(map[int]int)
	for _, note := range notes {
		counts[int(note.Channel)]++
	}
	best, bestCount := 0, 0
	for idx, count := range counts {
		if count > bestCount {
			best, bestCount = idx, count
		}
	}
	for _, ch := range p.project.Channels {
		if ch.Index == best {
			if ch.Plugin != "" {
				return ch.Plugin
			}
			return ch.Name
		}
	}
	return ""
}

func (p *FLStudioParser) channelName(index int) string {
	for _, ch := range p.project.Channels {
		if ch.Index == index {
			if ch.Name != "" {
				return ch.Name
			}
			if ch.Plugin != "" {
				return ch.Plugin
			}
		}
	}
	return fmt.Sprintf("Channel %d", index+1)
}

func (p *FLStudioParser) Arrangement() ([]daw.ClipData, error) {
	var clips []daw.ClipData
	for _, item := range p.project.Playlist {
		start := p.ticksToBeats(item.Pos)
		end := start + p.ticksToBeats(item.Length)
		track := fmt.Sprintf("Track %d", item.Track+1)

		if patternID, ok := item.PatternRef(); ok {
			clips = append(clips, daw.NewClip(p.patternLabel(patternID), start, end, track, daw.ClipMIDI, ""))
			continue
		}

		source := ""
		name := p.channelName(int(item.ItemIndex))
		for _, ch := range p.project.Channels {
			if ch.Index == int(item.ItemIndex) && ch.SampleFile != "" {
				source = p.resolveSample(ch.SampleFile)
			}
		}
		clips = append(clips, daw.NewClip(name, start, end, track, daw.ClipAudio, source))
	}
	return clips, nil
}

// patternLabel maps an opaque playlist pattern id back to a display name:
// direct index, off-by-one correction, identity tag, then a synthesized
// label.
func (p *FLStudioParser) patternLabel(id int) string {
	patterns := p.project.Patterns
	if id >= 0 && id < len(patterns) && patterns[id].Name != "" {
		return patterns[id].Name
	}
	if id-1 >= 0 && id-1 < len(patterns) && patterns[id-1].Name != "" {
		return patterns[id-1].Name
	}
	if pat := p.project.PatternByIndex(id); pat != nil && pat.Name != "" {
		return pat.Name
	}
	return fmt.Sprintf("Pattern %d", id)
}

func (p *FLStudioParser) TempoChanges() ([]daw.TempoChange, error) {
	// A project that never declares tempo yields an empty collection, not
	// a fabricated default change.
	if p.project.Tempo <= 0 {
		return nil, nil
	}
	return []daw.TempoChange{daw.NewTempoChange(0, p.project.Tempo, "")}, nil
}

// Key signatures are simply absent from this format. The pass recovers a
// label heuristically from the project comment, title, or file name and
// emits nothing when no heuristic fires.
var keyHintPattern = regexp.MustCompile(`(?i)\b([A-G][#b]?)[\s_-]*(maj(?:or)?|min(?:or)?|m)\b`)

func (p *FLStudioParser) KeyChanges() ([]daw.KeyChange, error) {
	stem := strings.TrimSuffix(filepath.Base(p.path), filepath.Ext(p.path))
	for _, source := range []string{p.project.Comment, p.project.Title, stem} {
		m := keyHintPattern.FindStringSubmatch(source)
		if m == nil {
			continue
		}
		root := strings.ToUpper(m[1][:1]) + m[1][1:]
		// Canonicalize flat spellings through the note-name conversion so
		// "Db minor" and "C# minor" label the same key.
		if midi, err := daw.NoteNameToMIDI(root + "4"); err == nil {
			root = strings.TrimRight(daw.MIDIToNoteName(midi), "-0123456789")
		}
		scale := "major"
		if strings.HasPrefix(strings.ToLower(m[2]), "m") && !strings.HasPrefix(strings.ToLower(m[2]), "maj") {
			scale = "minor"
		}
		return []daw.KeyChange{daw.NewKeyChange(0, root+" "+scale, scale)}, nil
	}
	return nil, nil
}

func (p *FLStudioParser) PluginChains() ([]daw.PluginChain, error) {
	var chains []daw.PluginChain
	for _, ch := range p.project.Channels {
		if ch.Plugin == "" && ch.Name == "" {
			continue
		}
		name := ch.Plugin
		if name == "" {
			name = ch.Name
		}
		deviceType := "native"
		if !strings.HasPrefix(name, "Fruity ") && ch.Plugin != "" {
			deviceType = "vst"
		}
		chains = append(chains, daw.PluginChain{
			Track: p.channelName(ch.Index),
			Devices: []daw.PluginDevice{{
				Name:    name,
				Type:    deviceType,
				Enabled: true,
				ID:      fmt.Sprintf("channel-%d", ch.Index),
			}},
			Position: len(chains),
		})
	}
	return chains, nil
}

func (p *FLStudioParser) Samples() ([]daw.SampleSource, error) {
	var samples []daw.SampleSource
	seen := make(map[string]bool)
	for _, ch := range p.project.Channels {
		if ch.SampleFile == "" {
			continue
		}
		resolved := p.resolveSample(ch.SampleFile)
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		sample := daw.SampleSource{
			Path:     resolved,
			FileName: filepath.Base(resolved),
			Track:    p.channelName(ch.Index),
		}
		if hash, err := fileutil.HashFile(resolved); err == nil {
			sample.Hash = hash
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (p *FLStudioParser) resolveSample(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, `\`, "/"))
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Join(filepath.Dir(p.path), raw)
}

var flpCurveNames = map[uint32]daw.CurveType{
	0: daw.CurveLinear,
	1: daw.CurveStep,
	2: daw.CurveSmooth,
	3: daw.CurveBezier,
	4: daw.CurveSine,
}

func (p *FLStudioParser) Automation() ([]daw.AutomationData, error) {
	var automation []daw.AutomationData
	for i, auto := range p.project.Automations {
		if len(auto.Points) == 0 {
			continue
		}
		parameter := auto.Parameter
		if parameter == "" {
			parameter = fmt.Sprintf("automation %d", i+1)
		}
		data := daw.AutomationData{
			Parameter: parameter,
			Track:     "Master",
			ID:        fmt.Sprintf("auto-%d", i),
		}
		for _, point := range auto.Points {
			curve, ok := flpCurveNames[point.Curve]
			if !ok {
				curve = daw.CurveUnknown
			}
			data.Points = append(data.Points, daw.AutomationPoint{
				Time:  p.ticksToBeats(point.Pos),
				Value: float64(point.Value),
				Curve: curve,
			})
		}
		automation = append(automation, data)
	}
	return automation, nil
}

func (p *FLStudioParser) Parse() (*daw.Metadata, error) {
	if !p.parsed {
		p.meta = Assemble(p.logger, p, p.path)
		p.parsed = true
	}
	return p.meta, nil
}

func (p *FLStudioParser) Validate() bool { return validateParser(p) }

func (p *FLStudioParser) Close() error { return nil }
