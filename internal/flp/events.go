package flp

// Event ID width classes. The payload size is encoded in the ID range.
const (
	wordBase  = 64
	dwordBase = 128
	textBase  = 192
)

// Known event IDs, following the published FLP event map. Only the events
// the extractor consumes are named; everything else is carried through as
// an anonymous event.
const (
	EvNewChannel  = 64  // word: selects the channel subsequent events apply to
	EvNewPattern  = 65  // word: selects the pattern (1-based)
	EvTempoCoarse = 66  // word: legacy whole-BPM tempo
	EvMainPitch   = 80  // word: project master pitch, semitones

	EvPlaylistTrackCount = 142 // dword
	EvFineTempo          = 156 // dword: BPM * 1000

	EvChannelName     = 192 // text: current channel's display name
	EvPatternName     = 193 // text: current pattern's display name
	EvProjectTitle    = 194 // text
	EvProjectComment  = 195 // text
	EvSampleFileName  = 196 // text: current channel's sample path
	EvProjectURL      = 197 // text
	EvCommentRTF      = 198 // text: comment in RTF form
	EvVersion         = 199 // text: e.g. "20.8.3.2304"
	EvDefPluginName   = 201 // text: current channel's generator
	EvPluginName      = 203 // text: user-visible plugin name
	EvPatternNotes    = 224 // blob: fixed-width note records
	EvPlaylistItems   = 233 // blob: fixed-width playlist records
	EvAutomationData  = 234 // blob: fixed-width automation points
	EvAutomationTrack = 235 // text: parameter label for the last 234 blob
)

// Event is one record from the FLdt stream. Value holds the numeric
// payload for byte/word/dword events; Data holds text and blob payloads.
type Event struct {
	ID    uint8
	Value uint32
	Data  []byte
}

// IsText reports whether the event carries a variable-length payload.
func (e Event) IsText() bool { return e.ID >= textBase }

// Text renders the payload as a string, stripping the UTF-16 and trailing
// NUL encodings newer writers use.
func (e Event) Text() string {
	data := e.Data
	if looksUTF16(data) {
		runes := make([]rune, 0, len(data)/2)
		for i := 0; i+1 < len(data); i += 2 {
			ch := rune(uint16(data[i]) | uint16(data[i+1])<<8)
			if ch == 0 {
				break
			}
			runes = append(runes, ch)
		}
		return string(runes)
	}
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

// looksUTF16 detects the little-endian two-byte encoding by checking for
// zero high bytes across the first code units.
func looksUTF16(data []byte) bool {
	if len(data) < 2 || len(data)%2 != 0 {
		return false
	}
	zeros := 0
	for i := 1; i < len(data) && i < 16; i += 2 {
		if data[i] == 0 {
			zeros++
		}
	}
	return zeros > 0 && data[1] == 0
}
