package daw

import (
	"time"
)

// Format identifies the source project dialect.
type Format string

const (
	FormatUnknown  Format = ""
	FormatAbleton  Format = "ableton"
	FormatFLStudio Format = "flstudio"
	FormatLogicPro Format = "logicpro"
)

// Defaults applied when the source file does not carry a value.
const (
	DefaultVelocity = 100
	DefaultTempo    = 120.0
	DefaultKey      = "C major"
	UnknownVersion  = "Unknown"

	// SchemaVersion identifies the extractor schema emitted in documents,
	// not the version of any source file.
	SchemaVersion = "1.0"
)

// TimeUnitBeats is the unit used for all arrangement and clip timing.
// Every dialect converts its native unit (ticks, seconds) to beats before
// populating the model.
const TimeUnitBeats = "beats"

// MIDINote is a single pitched event. Note, velocity, and channel are
// clamped into their MIDI ranges at construction.
type MIDINote struct {
	Note     int     `json:"note"`
	Velocity int     `json:"velocity"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Channel  int     `json:"channel"`
	Track    string  `json:"track"`
}

// NewMIDINote builds a note with all ranges enforced. A velocity of zero or
// below takes the default; durations never go negative.
func NewMIDINote(note, velocity int, start, duration float64, channel int, track string) MIDINote {
	if velocity <= 0 {
		velocity = DefaultVelocity
	}
	if duration < 0 {
		duration = 0
	}
	return MIDINote{
		Note:     ClampMIDI(note),
		Velocity: ClampMIDI(velocity),
		Start:    start,
		Duration: duration,
		Channel:  clampInt(channel, 0, 15),
		Track:    track,
	}
}

// MIDITrack groups notes under a named track. Index reflects extraction
// order and is not stable across dialects.
type MIDITrack struct {
	Name       string     `json:"name"`
	Index      int        `json:"index"`
	Notes      []MIDINote `json:"notes"`
	Instrument string     `json:"instrument,omitempty"`
	Volume     float64    `json:"volume"`
	Pan        float64    `json:"pan"`
}

// ClipKind tags what a timeline clip references.
type ClipKind string

const (
	ClipAudio ClipKind = "audio"
	ClipMIDI  ClipKind = "midi"
	ClipOther ClipKind = "other"
)

// ClipData is a timed region on the arrangement timeline. End is always
// >= Start; a zero or negative source duration collapses to a zero-length
// clip rather than an inverted one.
type ClipData struct {
	Name       string   `json:"name"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Track      string   `json:"track"`
	Kind       ClipKind `json:"kind"`
	SourceFile string   `json:"source_file,omitempty"`
}

// NewClip builds a clip with the end >= start invariant enforced.
func NewClip(name string, start, end float64, track string, kind ClipKind, sourceFile string) ClipData {
	if end < start {
		end = start
	}
	if kind == "" {
		kind = ClipOther
	}
	return ClipData{Name: name, Start: start, End: end, Track: track, Kind: kind, SourceFile: sourceFile}
}

// ArrangementData is the assembled timeline: ordered clips, the derived
// total length, and the distinct track names seen. TimeUnit documents the
// unit Start/End are expressed in.
type ArrangementData struct {
	Clips       []ClipData `json:"clips"`
	TotalLength float64    `json:"total_length"`
	TrackNames  []string   `json:"track_names"`
	TimeUnit    string     `json:"time_unit"`
}

// NewArrangement derives TotalLength and the track name set from clips.
// TotalLength is 0 for an empty timeline.
func NewArrangement(clips []ClipData) ArrangementData {
	arr := ArrangementData{Clips: clips, TimeUnit: TimeUnitBeats}
	seen := make(map[string]bool)
	for _, clip := range clips {
		if clip.End > arr.TotalLength {
			arr.TotalLength = clip.End
		}
		if clip.Track != "" && !seen[clip.Track] {
			seen[clip.Track] = true
			arr.TrackNames = append(arr.TrackNames, clip.Track)
		}
	}
	return arr
}

// TempoChange marks a tempo (and optionally meter) event on the timeline.
type TempoChange struct {
	Time          float64 `json:"time"`
	BPM           float64 `json:"bpm"`
	TimeSignature string  `json:"time_signature,omitempty"`
}

// NewTempoChange defaults non-positive tempos to DefaultTempo.
func NewTempoChange(time, bpm float64, timeSignature string) TempoChange {
	if bpm <= 0 {
		bpm = DefaultTempo
	}
	return TempoChange{Time: time, BPM: bpm, TimeSignature: timeSignature}
}

// KeyChange marks a key signature event.
type KeyChange struct {
	Time  float64 `json:"time"`
	Key   string  `json:"key"`
	Scale string  `json:"scale,omitempty"`
}

// NewKeyChange defaults an empty key label to DefaultKey.
func NewKeyChange(time float64, key, scale string) KeyChange {
	if key == "" {
		key = DefaultKey
	}
	return KeyChange{Time: time, Key: key, Scale: scale}
}

// PluginParameter is a single named value on a device.
type PluginParameter struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// PluginDevice is one instrument or effect in a chain.
type PluginDevice struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Parameters []PluginParameter `json:"parameters"`
	Enabled    bool              `json:"enabled"`
	ID         string            `json:"id,omitempty"`
}

// PluginChain is the ordered device list on one track.
type PluginChain struct {
	Track    string         `json:"track"`
	Devices  []PluginDevice `json:"devices"`
	Position int            `json:"position"`
}

// SampleSource references an audio file used by the project. Path is
// resolved against the project directory, never the process working
// directory.
type SampleSource struct {
	Path     string  `json:"path"`
	FileName string  `json:"file_name"`
	Track    string  `json:"track,omitempty"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Hash     string  `json:"hash,omitempty"`
}

// CurveType tags an automation segment's interpolation shape.
type CurveType string

const (
	CurveLinear  CurveType = "linear"
	CurveBezier  CurveType = "bezier"
	CurveStep    CurveType = "step"
	CurveSmooth  CurveType = "smooth"
	CurveSine    CurveType = "sine"
	CurveUnknown CurveType = "unknown"
)

// AutomationPoint is one breakpoint on an automation curve.
type AutomationPoint struct {
	Time  float64   `json:"time"`
	Value float64   `json:"value"`
	Curve CurveType `json:"curve,omitempty"`
}

// AutomationData is one parameter's breakpoint sequence on a track.
type AutomationData struct {
	Parameter string            `json:"parameter"`
	Track     string            `json:"track"`
	Points    []AutomationPoint `json:"points"`
	ID        string            `json:"id,omitempty"`
}

// Metadata is the aggregate root handed to the caller after a parse. The
// parser keeps no reference to it; the caller owns it exclusively.
type Metadata struct {
	SourcePath    string           `json:"source_path"`
	Format        Format           `json:"format"`
	Version       string           `json:"version"`
	Tracks        []MIDITrack      `json:"tracks"`
	Arrangement   ArrangementData  `json:"arrangement"`
	TempoChanges  []TempoChange    `json:"tempo_changes"`
	KeyChanges    []KeyChange      `json:"key_changes"`
	PluginChains  []PluginChain    `json:"plugin_chains"`
	Samples       []SampleSource   `json:"samples"`
	Automation    []AutomationData `json:"automation"`
	ExtractedAt   time.Time        `json:"extracted_at"`
	SchemaVersion string           `json:"schema_version"`
}

// NoteCount totals notes across all tracks.
func (m *Metadata) NoteCount() int {
	total := 0
	for _, track := range m.Tracks {
		total += len(track.Notes)
	}
	return total
}

// ClampMIDI forces a value into the MIDI 0-127 range.
func ClampMIDI(v int) int { return clampInt(v, 0, 127) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
