package dawparse

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dawprobe/internal/daw"
	"dawprobe/internal/fileutil"
)

// logicAliases uses the region/track/sequence vocabulary this bundle
// dialect favors, ordered newest naming first.
var logicAliases = Aliases{
	Elements: map[string][]string{
		"track":          {"Track", "SoftwareInstrumentTrack", "AudioTrack", "InstrumentTrack"},
		"track_name":     {"Name", "TrackName"},
		"note_event":     {"Note", "MidiNote", "NoteEvent"},
		"region":         {"Region", "MidiRegion", "AudioRegion", "Sequence"},
		"tempo":          {"TempoEvent", "Tempo", "TempoChange"},
		"time_signature": {"TimeSignature", "Meter"},
		"key_change":     {"KeySignature", "Key", "Scale"},
		"device":         {"Plugin", "Insert", "ChannelStripSetting", "AudioUnit"},
		"parameter":      {"Parameter", "Param"},
		"sample":         {"AudioFile", "SampleRef", "File"},
		"envelope":       {"Automation", "AutomationLane", "Envelope"},
		"envelope_event": {"Point", "AutomationPoint", "Event"},
	},
	Attrs: map[string][]string{
		"track_name": {"name", "Name", "title"},
		"version":    {"version", "Version", "appVersion"},
		"note_pitch": {"pitch", "key", "note"},
	},
}

// LogicProParser reads Logic bundle directories. No file name inside the
// bundle is guaranteed, so loading first discovers which XML document is
// the schema root.
type LogicProParser struct {
	logger *slog.Logger
	path   string
	root   *Node

	parsed bool
	meta   *daw.Metadata
}

// NewLogicProParser enforces both the suffix and the directory predicate
// before touching the bundle contents.
func NewLogicProParser(logger *slog.Logger, path string) (*LogicProParser, error) {
	if !strings.EqualFold(filepath.Ext(path), ExtLogicPro) {
		return nil, fmt.Errorf("not a logic bundle: %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat project: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a logic bundle: %s is not a directory", path)
	}

	rootFile, err := discoverSchemaRoot(path)
	if err != nil {
		return nil, CorruptedFileError(logger, path, "locate bundle schema root", err)
	}
	root, err := DecodeXMLFile(rootFile)
	if err != nil {
		return nil, CorruptedFileError(logger, path, fmt.Sprintf("parse bundle document %s", filepath.Base(rootFile)), err)
	}
	return &LogicProParser{logger: logger, path: path, root: root}, nil
}

// discoverSchemaRoot searches the bundle for the primary project
// document: XML files whose name suggests the project data first, then
// any XML anywhere in the bundle, then a legacy .logic file.
func discoverSchemaRoot(bundle string) (string, error) {
	var preferred, fallback, legacy []string
	err := filepath.WalkDir(bundle, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xml":
			lower := strings.ToLower(filepath.Base(path))
			if strings.Contains(lower, "project") || strings.Contains(lower, "main") || strings.Contains(lower, "song") {
				preferred = append(preferred, path)
			} else {
				fallback = append(fallback, path)
			}
		case ".logic":
			legacy = append(legacy, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk bundle: %w", err)
	}

	sort.Strings(preferred)
	sort.Strings(fallback)
	if len(preferred) > 0 {
		return preferred[0], nil
	}
	if len(fallback) > 0 {
		return fallback[0], nil
	}
	for _, candidate := range legacy {
		if _, err := DecodeXMLFile(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no xml document found in bundle")
}

func (p *LogicProParser) Format() daw.Format { return daw.FormatLogicPro }

func (p *LogicProParser) Version() string {
	raw, ok := logicAliases.AttrValue(p.root, "version")
	if !ok {
		return daw.UnknownVersion
	}
	if m := versionNumberPattern.FindString(raw); m != "" {
		return m
	}
	return daw.UnknownVersion
}

func (p *LogicProParser) MIDITracks() ([]daw.MIDITrack, error) {
	var tracks []daw.MIDITrack
	for i, trackNode := range logicAliases.FindNodes(p.root, "track") {
		name := logicName(trackNode, fmt.Sprintf("Track %d", i+1))
		track := daw.MIDITrack{Name: name, Index: i, Volume: 1.0}
		if instrument, ok := trackNode.Attr("instrument", "Instrument"); ok {
			track.Instrument = instrument
		}
		for _, event := range logicAliases.FindNodes(trackNode, "note_event") {
			pitch := logicPitch(event)
			track.Notes = append(track.Notes, daw.NewMIDINote(
				pitch,
				event.AttrInt(daw.DefaultVelocity, "velocity", "vel"),
				event.AttrFloat(0, "position", "start", "time"),
				event.AttrFloat(0, "duration", "length"),
				event.AttrInt(0, "channel"),
				name,
			))
		}
		sort.SliceStable(track.Notes, func(a, b int) bool {
			return track.Notes[a].Start < track.Notes[b].Start
		})
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// logicPitch accepts both numeric pitches and note-name spellings.
func logicPitch(event *Node) int {
	raw, ok := event.Attr(logicAliases.Attrs["note_pitch"]...)
	if !ok {
		return 60
	}
	if midi, err := daw.NoteNameToMIDI(raw); err == nil {
		return midi
	}
	return event.AttrInt(60, logicAliases.Attrs["note_pitch"]...)
}

func logicName(n *Node, placeholder string) string {
	if v, ok := logicAliases.AttrValue(n, "track_name"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	for _, alias := range logicAliases.Elements["track_name"] {
		if nameNode := n.FindFirst(alias); nameNode != nil && strings.TrimSpace(nameNode.Text) != "" {
			return strings.TrimSpace(nameNode.Text)
		}
	}
	return placeholder
}

func (p *LogicProParser) Arrangement() ([]daw.ClipData, error) {
	var clips []daw.ClipData
	for i, regionNode := range logicAliases.FindNodes(p.root, "region") {
		start := regionNode.AttrFloat(0, "position", "start", "time")
		end := regionNode.AttrFloat(start, "end")
		if end == start {
			end = start + regionNode.AttrFloat(0, "duration", "length")
		}

		kind := daw.ClipOther
		switch {
		case strings.Contains(strings.ToLower(regionNode.Name), "audio"):
			kind = daw.ClipAudio
		case strings.Contains(strings.ToLower(regionNode.Name), "midi"),
			strings.Contains(strings.ToLower(regionNode.Name), "sequence"):
			kind = daw.ClipMIDI
		}
		if v, ok := regionNode.Attr("type", "kind"); ok {
			switch strings.ToLower(v) {
			case "audio":
				kind = daw.ClipAudio
			case "midi":
				kind = daw.ClipMIDI
			}
		}

		name := logicName(regionNode, fmt.Sprintf("Region %d", i+1))
		source, _ := regionNode.Attr("file", "path", "src")
		if source != "" {
			source = p.resolvePath(source)
		}
		track := TrackNameFor(logicAliases, regionNode, "Unknown Track")
		clips = append(clips, daw.NewClip(name, start, end, track, kind, source))
	}
	return clips, nil
}

func (p *LogicProParser) TempoChanges() ([]daw.TempoChange, error) {
	var changes []daw.TempoChange
	for _, tempoNode := range logicAliases.FindNodes(p.root, "tempo") {
		bpm := tempoNode.AttrFloat(0, "bpm", "tempo", "value")
		if bpm <= 0 {
			continue
		}
		sig := ""
		numerator := tempoNode.AttrInt(0, "numerator")
		denominator := tempoNode.AttrInt(0, "denominator")
		if numerator > 0 && denominator > 0 {
			sig = fmt.Sprintf("%d/%d", numerator, denominator)
		} else {
			sig = p.timeSignature()
		}
		changes = append(changes, daw.NewTempoChange(tempoNode.AttrFloat(0, "position", "time"), bpm, sig))
	}
	return changes, nil
}

func (p *LogicProParser) timeSignature() string {
	for _, sigNode := range logicAliases.FindNodes(p.root, "time_signature") {
		numerator := sigNode.AttrInt(0, "numerator", "beats")
		denominator := sigNode.AttrInt(0, "denominator", "noteValue")
		if numerator > 0 && denominator > 0 {
			return fmt.Sprintf("%d/%d", numerator, denominator)
		}
	}
	return ""
}

func (p *LogicProParser) KeyChanges() ([]daw.KeyChange, error) {
	var changes []daw.KeyChange
	for _, keyNode := range logicAliases.FindNodes(p.root, "key_change") {
		key, _ := keyNode.Attr("key", "root", "name")
		scale, _ := keyNode.Attr("scale", "mode")
		if key == "" && scale == "" {
			continue
		}
		label := strings.TrimSpace(key)
		if scale != "" && !strings.Contains(strings.ToLower(label), strings.ToLower(scale)) {
			label = strings.TrimSpace(label + " " + strings.ToLower(scale))
		}
		changes = append(changes, daw.NewKeyChange(keyNode.AttrFloat(0, "position", "time"), label, strings.ToLower(scale)))
	}
	return changes, nil
}

func (p *LogicProParser) PluginChains() ([]daw.PluginChain, error) {
	var chains []daw.PluginChain
	for i, trackNode := range logicAliases.FindNodes(p.root, "track") {
		name := logicName(trackNode, fmt.Sprintf("Track %d", i+1))
		var devices []daw.PluginDevice
		for _, deviceNode := range logicAliases.FindNodes(trackNode, "device") {
			device := daw.PluginDevice{
				Name:    logicName(deviceNode, deviceNode.Name),
				Type:    "au",
				Enabled: deviceNode.AttrBool(true, "enabled", "on"),
			}
			if v, ok := deviceNode.Attr("type", "format"); ok {
				device.Type = strings.ToLower(v)
			}
			device.ID, _ = deviceNode.Attr("id", "uid")
			for _, paramNode := range logicAliases.FindNodes(deviceNode, "parameter") {
				paramName, _ := paramNode.Attr("name")
				if paramName == "" {
					paramName = fmt.Sprintf("param %d", len(device.Parameters)+1)
				}
				device.Parameters = append(device.Parameters, daw.PluginParameter{
					Name:  paramName,
					Value: paramNode.AttrFloat(0, "value"),
					Unit:  firstAttr(paramNode, "unit"),
				})
			}
			devices = append(devices, device)
		}
		if len(devices) == 0 {
			continue
		}
		chains = append(chains, daw.PluginChain{Track: name, Devices: devices, Position: len(chains)})
	}
	return chains, nil
}

func firstAttr(n *Node, names ...string) string {
	v, _ := n.Attr(names...)
	return v
}

func (p *LogicProParser) Samples() ([]daw.SampleSource, error) {
	var samples []daw.SampleSource
	seen := make(map[string]bool)
	for _, fileNode := range logicAliases.FindNodes(p.root, "sample") {
		raw, _ := fileNode.Attr("path", "file", "src", "name")
		if raw == "" {
			raw = strings.TrimSpace(fileNode.Text)
		}
		if raw == "" {
			continue
		}
		resolved := p.resolvePath(raw)
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		sample := daw.SampleSource{
			Path:     resolved,
			FileName: filepath.Base(resolved),
			Track:    TrackNameFor(logicAliases, fileNode, ""),
			Start:    fileNode.AttrFloat(0, "start"),
			Duration: fileNode.AttrFloat(0, "duration", "length"),
		}
		if hash, err := fileutil.HashFile(resolved); err == nil {
			sample.Hash = hash
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// resolvePath anchors relative references at the bundle directory.
func (p *LogicProParser) resolvePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Join(p.path, raw)
}

func (p *LogicProParser) Automation() ([]daw.AutomationData, error) {
	var automation []daw.AutomationData
	for i, laneNode := range logicAliases.FindNodes(p.root, "envelope") {
		var points []daw.AutomationPoint
		for _, pointNode := range logicAliases.FindNodes(laneNode, "envelope_event") {
			curve := daw.CurveLinear
			if v, ok := pointNode.Attr("curve", "interpolation"); ok {
				switch strings.ToLower(v) {
				case "linear":
					curve = daw.CurveLinear
				case "bezier":
					curve = daw.CurveBezier
				case "step":
					curve = daw.CurveStep
				case "smooth":
					curve = daw.CurveSmooth
				case "sine":
					curve = daw.CurveSine
				default:
					curve = daw.CurveUnknown
				}
			}
			points = append(points, daw.AutomationPoint{
				Time:  pointNode.AttrFloat(0, "position", "time"),
				Value: pointNode.AttrFloat(0, "value"),
				Curve: curve,
			})
		}
		if len(points) == 0 {
			continue
		}
		parameter, _ := laneNode.Attr("parameter", "target", "name")
		if parameter == "" {
			parameter = fmt.Sprintf("lane %d", i+1)
		}
		id, _ := laneNode.Attr("id")
		automation = append(automation, daw.AutomationData{
			Parameter: parameter,
			Track:     TrackNameFor(logicAliases, laneNode, "Unknown Track"),
			Points:    points,
			ID:        id,
		})
	}
	return automation, nil
}

func (p *LogicProParser) Parse() (*daw.Metadata, error) {
	if !p.parsed {
		p.meta = Assemble(p.logger, p, p.path)
		p.parsed = true
	}
	return p.meta, nil
}

func (p *LogicProParser) Validate() bool { return validateParser(p) }

func (p *LogicProParser) Close() error { return nil }
