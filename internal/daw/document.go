package daw

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"dawprobe/internal/textutil"
)

// Document is the serialized form of a Metadata aggregate. The count
// fields are always present; the entity arrays are populated only in the
// detailed form and live under their own keys so they never shadow the
// counts.
type Document struct {
	SourcePath    string    `json:"source_path"`
	Title         string    `json:"title"`
	Format        Format    `json:"format"`
	Version       string    `json:"version"`
	SchemaVersion string    `json:"schema_version"`
	ExtractedAt   time.Time `json:"extracted_at"`

	TrackCount      int `json:"track_count"`
	NoteCount       int `json:"note_count"`
	ClipCount       int `json:"clip_count"`
	TempoCount      int `json:"tempo_count"`
	KeyCount        int `json:"key_count"`
	PluginCount     int `json:"plugin_count"`
	SampleCount     int `json:"sample_count"`
	AutomationCount int `json:"automation_count"`

	Tracks       []MIDITrack      `json:"tracks,omitempty"`
	Arrangement  *ArrangementData `json:"arrangement,omitempty"`
	TempoChanges []TempoChange    `json:"tempo_changes,omitempty"`
	KeyChanges   []KeyChange      `json:"key_changes,omitempty"`
	PluginChains []PluginChain    `json:"plugin_chains,omitempty"`
	Samples      []SampleSource   `json:"samples,omitempty"`
	Automation   []AutomationData `json:"automation,omitempty"`
}

// Summary builds the counts-only document form.
func Summary(m *Metadata) Document {
	return Document{
		SourcePath:      m.SourcePath,
		Title:           textutil.DeriveTitle(m.SourcePath),
		Format:          m.Format,
		Version:         m.Version,
		SchemaVersion:   m.SchemaVersion,
		ExtractedAt:     m.ExtractedAt,
		TrackCount:      len(m.Tracks),
		NoteCount:       m.NoteCount(),
		ClipCount:       len(m.Arrangement.Clips),
		TempoCount:      len(m.TempoChanges),
		KeyCount:        len(m.KeyChanges),
		PluginCount:     len(m.PluginChains),
		SampleCount:     len(m.Samples),
		AutomationCount: len(m.Automation),
	}
}

// Detailed builds the full document: summary counts plus every entity.
func Detailed(m *Metadata) Document {
	doc := Summary(m)
	arrangement := m.Arrangement
	doc.Tracks = m.Tracks
	doc.Arrangement = &arrangement
	doc.TempoChanges = m.TempoChanges
	doc.KeyChanges = m.KeyChanges
	doc.PluginChains = m.PluginChains
	doc.Samples = m.Samples
	doc.Automation = m.Automation
	return doc
}

// Save writes the document as indented JSON.
func (d Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// LoadDocument reads a document previously written by Save.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", path, err)
	}
	return doc, nil
}
