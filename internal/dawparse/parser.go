package dawparse

import (
	"fmt"
	"log/slog"
	"time"

	"dawprobe/internal/daw"
	"dawprobe/internal/logging"
)

// Parser is the capability every dialect implements. Constructors perform
// format detection and container loading, the only fatal steps; the seven
// category passes below are best-effort and report failure through their
// error return, which Assemble converts into an empty collection plus a
// warning.
type Parser interface {
	Format() daw.Format
	// Version is best-effort and never fails; undiscoverable versions
	// report daw.UnknownVersion.
	Version() string

	MIDITracks() ([]daw.MIDITrack, error)
	Arrangement() ([]daw.ClipData, error)
	TempoChanges() ([]daw.TempoChange, error)
	KeyChanges() ([]daw.KeyChange, error)
	PluginChains() ([]daw.PluginChain, error)
	Samples() ([]daw.SampleSource, error)
	Automation() ([]daw.AutomationData, error)

	// Parse runs version discovery plus all seven passes and assembles the
	// aggregate. Parsing twice returns the same contents; a parser is
	// single-use for one file.
	Parse() (*daw.Metadata, error)
	// Validate reports whether Parse succeeds, for callers that want a
	// health check without touching the error taxonomy.
	Validate() bool
	Close() error
}

// pass runs one extraction pass with full isolation: an error or panic
// inside the pass becomes the zero value plus a warning log and never
// disturbs sibling passes.
func pass[T any](logger *slog.Logger, path, category string, fn func() (T, error)) T {
	var zero T
	result, err := func() (out T, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()
	if err != nil {
		if logger != nil {
			logger.Warn("extraction pass degraded to empty",
				logging.Path(path),
				logging.String(logging.FieldCategory, category),
				logging.Error(err))
		}
		return zero
	}
	return result
}

// Assemble orchestrates the seven passes against p and builds the
// aggregate. It never fails: every pass degrades independently.
func Assemble(logger *slog.Logger, p Parser, sourcePath string) *daw.Metadata {
	meta := &daw.Metadata{
		SourcePath:    sourcePath,
		Format:        p.Format(),
		Version:       p.Version(),
		ExtractedAt:   time.Now().UTC(),
		SchemaVersion: daw.SchemaVersion,
	}
	meta.Tracks = pass(logger, sourcePath, "midi_tracks", p.MIDITracks)
	clips := pass(logger, sourcePath, "arrangement", p.Arrangement)
	meta.Arrangement = daw.NewArrangement(clips)
	meta.TempoChanges = pass(logger, sourcePath, "tempo_changes", p.TempoChanges)
	meta.KeyChanges = pass(logger, sourcePath, "key_changes", p.KeyChanges)
	meta.PluginChains = pass(logger, sourcePath, "plugin_chains", p.PluginChains)
	meta.Samples = pass(logger, sourcePath, "samples", p.Samples)
	meta.Automation = pass(logger, sourcePath, "automation", p.Automation)
	return meta
}

// validateParser is the shared Validate implementation.
func validateParser(p Parser) bool {
	_, err := p.Parse()
	return err == nil
}
