package dawparse

import (
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel markers for the parse failure taxonomy. Concrete errors wrap
// exactly one of these so callers can classify with errors.Is.
var (
	// ErrUnsupportedFormat means the path's extension or shape matches no
	// known dialect. Raised before any container I/O.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrCorruptedFile means the container itself could not be opened or
	// its primary schema root could not be located.
	ErrCorruptedFile = errors.New("corrupted file")
	// ErrMissingData is reserved for data a format is contractually
	// required to contain. No concrete parser raises it today; extraction
	// is best-effort throughout.
	ErrMissingData = errors.New("missing required data")
)

// ParseError is the base failure type: a message tied to the offending
// file path, wrapping one taxonomy marker and optionally a cause. It is
// logged at error level on construction so a failed file is reported once
// regardless of how the caller handles the error.
type ParseError struct {
	Path    string
	Message string
	marker  error
	cause   error
}

func (e *ParseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.marker, e.cause}
	}
	return []error{e.marker}
}

func newParseError(logger *slog.Logger, marker error, path, message string, cause error) *ParseError {
	err := &ParseError{Path: path, Message: message, marker: marker, cause: cause}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("parse failure",
		slog.String("path", path),
		slog.String("reason", message),
		slog.Any("error", cause))
	return err
}

// UnsupportedFormatError builds a taxonomy error for a path whose shape
// matches no dialect.
func UnsupportedFormatError(logger *slog.Logger, path, message string) error {
	return newParseError(logger, ErrUnsupportedFormat, path, message, nil)
}

// CorruptedFileError builds a taxonomy error for an unreadable container.
func CorruptedFileError(logger *slog.Logger, path, message string, cause error) error {
	return newParseError(logger, ErrCorruptedFile, path, message, cause)
}
