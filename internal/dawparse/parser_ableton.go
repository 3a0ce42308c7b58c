package dawparse

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"dawprobe/internal/daw"
	"dawprobe/internal/fileutil"
)

// abletonAliases maps each extraction concern to the element and
// attribute names Live has used for it across releases, newest first.
var abletonAliases = Aliases{
	Elements: map[string][]string{
		"track":          {"MidiTrack", "AudioTrack", "ReturnTrack", "GroupTrack", "Track"},
		"midi_track":     {"MidiTrack", "Track"},
		"track_name":     {"EffectiveName", "UserName", "Name"},
		"key_track":      {"KeyTrack"},
		"note_event":     {"MidiNoteEvent", "NoteEvent", "Note"},
		"clip":           {"AudioClip", "MidiClip", "Clip"},
		"clip_name":      {"Name"},
		"tempo":          {"Tempo", "TempoEvent", "CurrentTempo"},
		"time_signature": {"TimeSignature", "RemoteableTimeSignature"},
		"key_change":     {"ScaleInformation", "KeyChange", "Scale"},
		"device":         {"PluginDevice", "AuPluginDevice", "Vst3PluginDevice", "Device"},
		"device_name":    {"PlugName", "UserName", "Name"},
		"parameter":      {"PluginFloatParameter", "PluginEnumParameter", "Parameter"},
		"sample":         {"SampleRef", "FileRef"},
		"sample_path":    {"Path", "RelativePath", "FileName"},
		"envelope":       {"AutomationEnvelope", "Envelope"},
		"envelope_event": {"FloatEvent", "EnumEvent", "BoolEvent"},
	},
	Attrs: map[string][]string{
		"track_name": {"Name", "EffectiveName"},
		"version":    {"Creator", "MajorVersion", "Version"},
		"note_pitch": {"Key", "Pitch", "NoteNumber", "MidiKey"},
		"time":       {"Time", "CurrentStart", "Start"},
		"value":      {"Value", "Manual"},
	},
}

var versionNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)+|\d+`)

// AbletonParser reads Ableton Live sets: a zip archive whose primary
// member is the project XML document. Legacy sets are sometimes stored as
// bare XML with the same extension, so a failed zip open falls back to
// parsing the file directly.
type AbletonParser struct {
	logger *slog.Logger
	path   string
	root   *Node

	parsed bool
	meta   *daw.Metadata
}

// NewAbletonParser detects the format (suffix check, before any I/O),
// then loads the container. Container problems are the only fatal errors.
func NewAbletonParser(logger *slog.Logger, path string) (*AbletonParser, error) {
	if !strings.EqualFold(filepath.Ext(path), ExtAbleton) {
		return nil, fmt.Errorf("not an ableton live set: %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat project: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("not an ableton live set: %s is a directory", path)
	}

	root, err := loadAbletonRoot(path)
	if err != nil {
		return nil, CorruptedFileError(logger, path, "open live set container", err)
	}
	return &AbletonParser{logger: logger, path: path, root: root}, nil
}

// loadAbletonRoot opens the zip archive and decodes the first top-level
// XML member. Files that are not archives at all are retried as bare XML.
func loadAbletonRoot(path string) (*Node, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			root, xmlErr := DecodeXMLFile(path)
			if xmlErr != nil {
				return nil, fmt.Errorf("neither zip nor bare xml: %w", xmlErr)
			}
			return root, nil
		}
		return nil, err
	}
	defer archive.Close()

	for _, member := range archive.File {
		if strings.Contains(member.Name, "/") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(member.Name), ".xml") {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive member %s: %w", member.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read archive member %s: %w", member.Name, err)
		}
		return DecodeXML(bytes.NewReader(data))
	}
	return nil, errors.New("archive contains no top-level xml document")
}

func (p *AbletonParser) Format() daw.Format { return daw.FormatAbleton }

// Version reads the root creator attribute and extracts its numeric part.
func (p *AbletonParser) Version() string {
	raw, ok := abletonAliases.AttrValue(p.root, "version")
	if !ok {
		return daw.UnknownVersion
	}
	if m := versionNumberPattern.FindString(raw); m != "" {
		return m
	}
	return daw.UnknownVersion
}

func (p *AbletonParser) MIDITracks() ([]daw.MIDITrack, error) {
	var tracks []daw.MIDITrack
	for i, trackNode := range abletonAliases.FindNodes(p.root, "midi_track") {
		name := abletonTrackName(trackNode, fmt.Sprintf("Track %d", i+1))
		track := daw.MIDITrack{Name: name, Index: i, Volume: 1.0}

		keyTracks := trackNode.FindAll("KeyTrack")
		if len(keyTracks) > 0 {
			// Live groups note events per pitch lane.
			for _, keyTrack := range keyTracks {
				pitch := keyTrackPitch(keyTrack)
				for _, event := range abletonAliases.FindNodes(keyTrack, "note_event") {
					track.Notes = append(track.Notes, abletonNote(event, pitch, name))
				}
			}
		} else {
			for _, event := range abletonAliases.FindNodes(trackNode, "note_event") {
				pitch := event.AttrInt(60, abletonAliases.Attrs["note_pitch"]...)
				track.Notes = append(track.Notes, abletonNote(event, pitch, name))
			}
		}

		sort.SliceStable(track.Notes, func(a, b int) bool {
			return track.Notes[a].Start < track.Notes[b].Start
		})
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func abletonNote(event *Node, pitch int, track string) daw.MIDINote {
	return daw.NewMIDINote(
		pitch,
		int(event.AttrFloat(daw.DefaultVelocity, "Velocity")),
		event.AttrFloat(0, "Time"),
		event.AttrFloat(0, "Duration"),
		0,
		track,
	)
}

// keyTrackPitch reads the lane's MidiKey, stored either as an attribute
// or as a child element's Value.
func keyTrackPitch(keyTrack *Node) int {
	if v := keyTrack.AttrInt(-1, "MidiKey", "Key"); v >= 0 {
		return v
	}
	if child := keyTrack.FindFirst("MidiKey"); child != nil {
		return child.AttrInt(60, "Value")
	}
	return 60
}

// abletonTrackName digs the effective name out of the Name child block,
// falling back to a direct attribute and then the placeholder.
func abletonTrackName(trackNode *Node, placeholder string) string {
	for _, alias := range abletonAliases.Elements["track_name"] {
		if nameNode := trackNode.FindFirst(alias); nameNode != nil {
			if v, ok := nameNode.Attr("Value"); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	if v, ok := trackNode.Attr("Name"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return placeholder
}

func (p *AbletonParser) Arrangement() ([]daw.ClipData, error) {
	var clips []daw.ClipData
	for i, clipNode := range abletonAliases.FindNodes(p.root, "clip") {
		start := clipNode.AttrFloat(0, "CurrentStart", "Time", "Start")
		end := clipNode.AttrFloat(start, "CurrentEnd", "End")
		if end == start {
			end = start + clipNode.AttrFloat(0, "Duration", "Length")
		}

		kind := daw.ClipOther
		switch {
		case strings.EqualFold(clipNode.Name, "AudioClip"):
			kind = daw.ClipAudio
		case strings.EqualFold(clipNode.Name, "MidiClip"):
			kind = daw.ClipMIDI
		}

		name := fmt.Sprintf("Clip %d", i+1)
		if nameNode := clipNode.FindFirst("Name"); nameNode != nil {
			if v, ok := nameNode.Attr("Value"); ok && strings.TrimSpace(v) != "" {
				name = strings.TrimSpace(v)
			}
		}

		var source string
		if ref := clipNode.FindFirst("SampleRef"); ref != nil {
			source = p.samplePath(ref)
		}

		track := TrackNameFor(abletonAliases, clipNode, "Unknown Track")
		clips = append(clips, daw.NewClip(name, start, end, track, kind, source))
	}
	return clips, nil
}

func (p *AbletonParser) TempoChanges() ([]daw.TempoChange, error) {
	var changes []daw.TempoChange
	for _, tempoNode := range abletonAliases.FindNodes(p.root, "tempo") {
		bpm := tempoNode.AttrFloat(0, "Value")
		if bpm == 0 {
			if manual := tempoNode.FindFirst("Manual"); manual != nil {
				bpm = manual.AttrFloat(0, "Value")
			}
		}
		if bpm <= 0 {
			continue
		}
		changes = append(changes, daw.NewTempoChange(tempoNode.AttrFloat(0, "Time"), bpm, p.timeSignature()))
	}
	return changes, nil
}

// timeSignature finds the first meter declaration, rendered as "N/D".
func (p *AbletonParser) timeSignature() string {
	for _, sigNode := range abletonAliases.FindNodes(p.root, "time_signature") {
		numerator := sigNode.AttrInt(0, "Numerator")
		denominator := sigNode.AttrInt(0, "Denominator")
		if numerator <= 0 || denominator <= 0 {
			continue
		}
		return fmt.Sprintf("%d/%d", numerator, denominator)
	}
	return ""
}

func (p *AbletonParser) KeyChanges() ([]daw.KeyChange, error) {
	var changes []daw.KeyChange
	for _, keyNode := range abletonAliases.FindNodes(p.root, "key_change") {
		root := ""
		if rootNode := keyNode.FindFirst("RootNote"); rootNode != nil {
			root = daw.MIDIToNoteName(rootNode.AttrInt(0, "Value"))
			// Strip the octave; key labels are pitch classes.
			root = strings.TrimRight(root, "-0123456789")
		}
		scale := ""
		if scaleNode := keyNode.FindFirst("Name"); scaleNode != nil {
			scale, _ = scaleNode.Attr("Value")
		}
		if root == "" && scale == "" {
			continue
		}
		label := strings.TrimSpace(root + " " + scaleName(scale))
		changes = append(changes, daw.NewKeyChange(keyNode.AttrFloat(0, "Time"), label, scaleName(scale)))
	}
	return changes, nil
}

func scaleName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "major"
	}
	return strings.ToLower(raw)
}

func (p *AbletonParser) PluginChains() ([]daw.PluginChain, error) {
	var chains []daw.PluginChain
	for i, trackNode := range abletonAliases.FindNodes(p.root, "track") {
		name := abletonTrackName(trackNode, fmt.Sprintf("Track %d", i+1))
		var devices []daw.PluginDevice
		for _, deviceNode := range abletonAliases.FindNodes(trackNode, "device") {
			devices = append(devices, p.device(deviceNode))
		}
		if len(devices) == 0 {
			continue
		}
		chains = append(chains, daw.PluginChain{Track: name, Devices: devices, Position: len(chains)})
	}
	return chains, nil
}

func (p *AbletonParser) device(deviceNode *Node) daw.PluginDevice {
	name := deviceNode.Name
	for _, alias := range abletonAliases.Elements["device_name"] {
		if nameNode := deviceNode.FindFirst(alias); nameNode != nil {
			if v, ok := nameNode.Attr("Value"); ok && strings.TrimSpace(v) != "" {
				name = strings.TrimSpace(v)
				break
			}
		}
	}

	deviceType := "native"
	switch {
	case strings.Contains(strings.ToLower(deviceNode.Name), "vst"):
		deviceType = "vst"
	case strings.Contains(strings.ToLower(deviceNode.Name), "aupl"):
		deviceType = "au"
	}

	enabled := true
	if onNode := deviceNode.FindFirst("On"); onNode != nil {
		if manual := onNode.FindFirst("Manual"); manual != nil {
			enabled = manual.AttrBool(true, "Value")
		}
	}

	var params []daw.PluginParameter
	for _, paramNode := range abletonAliases.FindNodes(deviceNode, "parameter") {
		paramName, _ := paramNode.Attr("Name", "ParameterName")
		value := paramNode.AttrFloat(0, "Value")
		if manual := paramNode.FindFirst("Manual"); manual != nil {
			value = manual.AttrFloat(value, "Value")
		}
		if paramName == "" {
			paramName = fmt.Sprintf("param %d", len(params)+1)
		}
		params = append(params, daw.PluginParameter{Name: paramName, Value: value})
	}

	id, _ := deviceNode.Attr("Id")
	return daw.PluginDevice{Name: name, Type: deviceType, Parameters: params, Enabled: enabled, ID: id}
}

func (p *AbletonParser) Samples() ([]daw.SampleSource, error) {
	var samples []daw.SampleSource
	seen := make(map[string]bool)
	for _, refNode := range abletonAliases.FindNodes(p.root, "sample") {
		resolved := p.samplePath(refNode)
		if resolved == "" || seen[resolved] {
			continue
		}
		seen[resolved] = true

		sample := daw.SampleSource{
			Path:     resolved,
			FileName: filepath.Base(resolved),
			Track:    TrackNameFor(abletonAliases, refNode, ""),
		}
		if hash, err := fileutil.HashFile(resolved); err == nil {
			sample.Hash = hash
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// samplePath extracts and resolves a file reference. Relative paths are
// anchored at the project's directory, never the working directory.
func (p *AbletonParser) samplePath(refNode *Node) string {
	var raw string
	for _, alias := range abletonAliases.Elements["sample_path"] {
		if pathNode := refNode.FindFirst(alias); pathNode != nil {
			if v, ok := pathNode.Attr("Value"); ok && strings.TrimSpace(v) != "" {
				raw = strings.TrimSpace(v)
				break
			}
			if strings.TrimSpace(pathNode.Text) != "" {
				raw = strings.TrimSpace(pathNode.Text)
				break
			}
		}
	}
	if raw == "" {
		if v, ok := refNode.Attr("Path", "RelativePath"); ok {
			raw = strings.TrimSpace(v)
		}
	}
	if raw == "" {
		return ""
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Join(filepath.Dir(p.path), raw)
}

func (p *AbletonParser) Automation() ([]daw.AutomationData, error) {
	var automation []daw.AutomationData
	for i, envNode := range abletonAliases.FindNodes(p.root, "envelope") {
		var points []daw.AutomationPoint
		for _, event := range abletonAliases.FindNodes(envNode, "envelope_event") {
			points = append(points, daw.AutomationPoint{
				Time:  event.AttrFloat(0, "Time"),
				Value: event.AttrFloat(0, "Value"),
				Curve: daw.CurveLinear,
			})
		}
		if len(points) == 0 {
			continue
		}

		id := ""
		if target := envNode.FindFirst("EnvelopeTarget"); target != nil {
			if pointee := target.FindFirst("PointeeId"); pointee != nil {
				id, _ = pointee.Attr("Value")
			}
		}
		parameter := fmt.Sprintf("envelope %d", i+1)
		if id != "" {
			parameter = "parameter " + id
		}

		automation = append(automation, daw.AutomationData{
			Parameter: parameter,
			Track:     TrackNameFor(abletonAliases, envNode, "Unknown Track"),
			Points:    points,
			ID:        id,
		})
	}
	return automation, nil
}

func (p *AbletonParser) Parse() (*daw.Metadata, error) {
	if !p.parsed {
		p.meta = Assemble(p.logger, p, p.path)
		p.parsed = true
	}
	return p.meta, nil
}

func (p *AbletonParser) Validate() bool { return validateParser(p) }

// Close is a no-op: the archive handle is released inside load.
func (p *AbletonParser) Close() error { return nil }
