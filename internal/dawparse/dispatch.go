package dawparse

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"dawprobe/internal/daw"
)

// Extensions for the supported dialects.
const (
	ExtAbleton  = ".als"
	ExtFLStudio = ".flp"
	ExtLogicPro = ".logicx"
)

// DefaultExtensions lists every extension the dispatcher recognizes.
func DefaultExtensions() []string {
	return []string{ExtAbleton, ExtFLStudio, ExtLogicPro}
}

// DetectFormat maps a path's extension to its format tag. Unrecognized
// extensions yield daw.FormatUnknown; no I/O is performed.
func DetectFormat(path string) daw.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtAbleton:
		return daw.FormatAbleton
	case ExtFLStudio:
		return daw.FormatFLStudio
	case ExtLogicPro:
		return daw.FormatLogicPro
	default:
		return daw.FormatUnknown
	}
}

// FindProjectFiles walks root and returns the sorted paths whose extension
// appears in exts (defaulting to every supported extension). A Logic
// bundle is a directory, so matching directories are collected and not
// descended into.
func FindProjectFiles(root string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[ext] = true
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !wanted[ext] {
			return nil
		}
		if d.IsDir() {
			if ext == ExtLogicPro {
				found = append(found, path)
				return filepath.SkipDir
			}
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}

// NewParser instantiates the concrete parser for path based on its
// extension. The returned parser has already loaded its container; an
// unreadable container surfaces here as a corrupted-file error.
func NewParser(logger *slog.Logger, path string) (Parser, error) {
	switch DetectFormat(path) {
	case daw.FormatAbleton:
		return NewAbletonParser(logger, path)
	case daw.FormatFLStudio:
		return NewFLStudioParser(logger, path)
	case daw.FormatLogicPro:
		return NewLogicProParser(logger, path)
	default:
		return nil, UnsupportedFormatError(logger, path, fmt.Sprintf("no parser for extension %q", filepath.Ext(path)))
	}
}
