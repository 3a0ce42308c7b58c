package flp

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
)

const (
	headerMagic = "FLhd"
	dataMagic   = "FLdt"

	// DefaultPPQ is assumed when the header carries no usable resolution.
	DefaultPPQ = 96

	noteRecordSize     = 24
	playlistRecordSize = 32
	autoPointSize      = 16

	// patternBase offsets playlist item indices that reference patterns
	// rather than audio channels.
	patternIndexBase = 20480
)

// Note is one fixed-width note record from a pattern notes blob.
type Note struct {
	Pos         uint32
	Flags       uint16
	Channel     uint16
	Duration    uint32
	Key         uint16
	Release     uint8
	MIDIChannel uint8
	Pan         uint8
	Velocity    uint8
}

// PlaylistItem is one arrangement placement. ItemIndex at or above
// patternIndexBase references a pattern; below it, a channel.
type PlaylistItem struct {
	Pos       uint32
	ItemIndex uint16
	Length    uint32
	Track     uint32
}

// PatternRef reports whether the item references a pattern and, if so,
// its 1-based pattern number.
func (i PlaylistItem) PatternRef() (int, bool) {
	if i.ItemIndex >= patternIndexBase {
		return int(i.ItemIndex - patternIndexBase), true
	}
	return 0, false
}

// AutomationPoint is one fixed-width point from an automation blob.
type AutomationPoint struct {
	Pos   uint32
	Value float32
	Curve uint32
}

// Automation is one recorded parameter lane.
type Automation struct {
	Parameter string
	Points    []AutomationPoint
}

// Channel is a generator or sampler slot.
type Channel struct {
	Index      int
	Name       string
	SampleFile string
	Plugin     string
}

// Pattern is a named note container.
type Pattern struct {
	Index int // 1-based, as the format numbers them
	Name  string
	Notes []Note
}

// Project is the decoded object graph plus the raw material it came from.
type Project struct {
	Format       int
	ChannelCount int
	PPQ          int
	Tempo        float64
	Version      string
	Title        string
	Comment      string

	Channels    []*Channel
	Patterns    []*Pattern
	Playlist    []PlaylistItem
	Automations []Automation

	Events []Event
	Raw    *Reader
}

// PatternByIndex returns the pattern with the given 1-based index.
func (p *Project) PatternByIndex(index int) *Pattern {
	for _, pat := range p.Patterns {
		if pat.Index == index {
			return pat
		}
	}
	return nil
}

// Decode reads and decodes an FLP file.
func Decode(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an in-memory FLP image.
func DecodeBytes(data []byte) (*Project, error) {
	r := NewReader(data)

	magic, err := r.String(0, 4)
	if err != nil || magic != headerMagic {
		return nil, fmt.Errorf("not an fl studio project: missing %s header", headerMagic)
	}
	headerLen, err := r.U32(4)
	if err != nil {
		return nil, fmt.Errorf("truncated header: %w", err)
	}
	format, _ := r.U16(8)
	channelCount, _ := r.U16(10)
	ppq, _ := r.U16(12)

	dataOff := 8 + int(headerLen)
	dataTag, err := r.String(dataOff, 4)
	if err != nil || dataTag != dataMagic {
		return nil, fmt.Errorf("missing %s chunk", dataMagic)
	}
	dataLen, err := r.U32(dataOff + 4)
	if err != nil {
		return nil, fmt.Errorf("truncated data chunk: %w", err)
	}
	body := data[dataOff+8:]
	if int(dataLen) < len(body) {
		body = body[:dataLen]
	}

	events, err := parseEvents(body)
	if err != nil {
		return nil, err
	}

	project := &Project{
		Format:       int(format),
		ChannelCount: int(channelCount),
		PPQ:          int(ppq),
		Version:      "",
		Events:       events,
		Raw:          r,
	}
	if project.PPQ <= 0 {
		project.PPQ = DefaultPPQ
	}
	project.assemble()
	return project, nil
}

// parseEvents walks the FLdt stream. Width is derived from the ID class;
// text/blob events carry a 7-bit varint length.
func parseEvents(body []byte) ([]Event, error) {
	var events []Event
	pos := 0
	for pos < len(body) {
		id := body[pos]
		pos++
		switch {
		case id < wordBase:
			if pos+1 > len(body) {
				return nil, fmt.Errorf("event %d truncated at %d", id, pos)
			}
			events = append(events, Event{ID: id, Value: uint32(body[pos])})
			pos++
		case id < dwordBase:
			if pos+2 > len(body) {
				return nil, fmt.Errorf("event %d truncated at %d", id, pos)
			}
			events = append(events, Event{ID: id, Value: uint32(binary.LittleEndian.Uint16(body[pos:]))})
			pos += 2
		case id < textBase:
			if pos+4 > len(body) {
				return nil, fmt.Errorf("event %d truncated at %d", id, pos)
			}
			events = append(events, Event{ID: id, Value: binary.LittleEndian.Uint32(body[pos:])})
			pos += 4
		default:
			length, n := readVarint(body[pos:])
			// Compare in uint64 space: a hostile varint near 2^63 would wrap
			// the int sum and slip past a signed bounds check.
			if n == 0 || length > uint64(len(body)-pos-n) {
				return nil, fmt.Errorf("event %d has bad length at %d", id, pos)
			}
			pos += n
			payload := make([]byte, length)
			copy(payload, body[pos:pos+int(length)])
			events = append(events, Event{ID: id, Data: payload})
			pos += int(length)
		}
	}
	return events, nil
}

// readVarint decodes the 7-bit continuation varint used for text lengths.
func readVarint(b []byte) (uint64, int) {
	var value uint64
	var shift uint
	for i := 0; i < len(b) && i < 9; i++ {
		value |= uint64(b[i]&0x7f) << shift
		if b[i]&0x80 == 0 {
			return value, i + 1
		}
		shift += 7
	}
	return 0, 0
}

// assemble replays the event stream, applying each event to the channel
// or pattern cursor the preceding selector events established.
func (p *Project) assemble() {
	channels := make(map[int]*Channel)
	patterns := make(map[int]*Pattern)
	var curChannel *Channel
	var curPattern *Pattern
	var pendingAuto *Automation

	for _, ev := range p.Events {
		switch ev.ID {
		case EvNewChannel:
			idx := int(ev.Value)
			if channels[idx] == nil {
				channels[idx] = &Channel{Index: idx}
			}
			curChannel = channels[idx]
		case EvNewPattern:
			idx := int(ev.Value)
			if patterns[idx] == nil {
				patterns[idx] = &Pattern{Index: idx}
			}
			curPattern = patterns[idx]
		case EvTempoCoarse:
			if p.Tempo == 0 {
				p.Tempo = float64(ev.Value)
			}
		case EvFineTempo:
			p.Tempo = float64(ev.Value) / 1000.0
		case EvVersion:
			p.Version = ev.Text()
		case EvProjectTitle:
			p.Title = ev.Text()
		case EvProjectComment, EvCommentRTF:
			if p.Comment == "" {
				p.Comment = ev.Text()
			}
		case EvChannelName:
			if curChannel != nil {
				curChannel.Name = ev.Text()
			}
		case EvSampleFileName:
			if curChannel != nil {
				curChannel.SampleFile = ev.Text()
			}
		case EvDefPluginName, EvPluginName:
			if curChannel != nil && curChannel.Plugin == "" {
				curChannel.Plugin = ev.Text()
			}
		case EvPatternName:
			if curPattern != nil {
				curPattern.Name = ev.Text()
			}
		case EvPatternNotes:
			if curPattern != nil {
				curPattern.Notes = append(curPattern.Notes, parseNotes(ev.Data)...)
			}
		case EvPlaylistItems:
			p.Playlist = append(p.Playlist, parsePlaylist(ev.Data)...)
		case EvAutomationData:
			auto := Automation{Points: parseAutoPoints(ev.Data)}
			p.Automations = append(p.Automations, auto)
			pendingAuto = &p.Automations[len(p.Automations)-1]
		case EvAutomationTrack:
			if pendingAuto != nil {
				pendingAuto.Parameter = ev.Text()
				pendingAuto = nil
			}
		}
	}

	for _, ch := range channels {
		p.Channels = append(p.Channels, ch)
	}
	sort.Slice(p.Channels, func(a, b int) bool { return p.Channels[a].Index < p.Channels[b].Index })
	for _, pat := range patterns {
		p.Patterns = append(p.Patterns, pat)
	}
	sort.Slice(p.Patterns, func(a, b int) bool { return p.Patterns[a].Index < p.Patterns[b].Index })
}

func parseNotes(data []byte) []Note {
	count := len(data) / noteRecordSize
	notes := make([]Note, 0, count)
	for i := 0; i < count; i++ {
		rec := data[i*noteRecordSize:]
		notes = append(notes, Note{
			Pos:         binary.LittleEndian.Uint32(rec[0:]),
			Flags:       binary.LittleEndian.Uint16(rec[4:]),
			Channel:     binary.LittleEndian.Uint16(rec[6:]),
			Duration:    binary.LittleEndian.Uint32(rec[8:]),
			Key:         binary.LittleEndian.Uint16(rec[12:]),
			Release:     rec[16],
			MIDIChannel: rec[17],
			Pan:         rec[18],
			Velocity:    rec[19],
		})
	}
	return notes
}

func parsePlaylist(data []byte) []PlaylistItem {
	count := len(data) / playlistRecordSize
	items := make([]PlaylistItem, 0, count)
	for i := 0; i < count; i++ {
		rec := data[i*playlistRecordSize:]
		items = append(items, PlaylistItem{
			Pos:       binary.LittleEndian.Uint32(rec[0:]),
			ItemIndex: binary.LittleEndian.Uint16(rec[6:]),
			Length:    binary.LittleEndian.Uint32(rec[8:]),
			Track:     binary.LittleEndian.Uint32(rec[12:]),
		})
	}
	return items
}

func parseAutoPoints(data []byte) []AutomationPoint {
	count := len(data) / autoPointSize
	points := make([]AutomationPoint, 0, count)
	for i := 0; i < count; i++ {
		rec := data[i*autoPointSize:]
		points = append(points, AutomationPoint{
			Pos:   binary.LittleEndian.Uint32(rec[0:]),
			Value: math.Float32frombits(binary.LittleEndian.Uint32(rec[4:])),
			Curve: binary.LittleEndian.Uint32(rec[8:]),
		})
	}
	return points
}
