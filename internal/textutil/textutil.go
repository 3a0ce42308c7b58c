// Package textutil provides text helpers for document naming and display
// titles derived from project file names.
package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// Stem returns the base name of path without its extension, sanitized
// for use as a document key.
func Stem(path string) string {
	base := filepath.Base(strings.TrimSuffix(path, "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "project"
	}
	return SanitizeFileName(stem)
}

// DeriveTitle builds a display title from a project path: separators
// collapse to spaces and words are title-cased.
func DeriveTitle(sourcePath string) string {
	if sourcePath == "" {
		return "Untitled Project"
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Project"
	}
	return cases.Title(language.Und).String(title)
}
