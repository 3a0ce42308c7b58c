package logging

import (
	"log/slog"
)

// Standardized structured logging keys.
const (
	// FieldComponent names the subsystem emitting the line.
	FieldComponent = "component"
	// FieldPath is the project file a line concerns.
	FieldPath = "path"
	// FieldFormat is the detected project format tag.
	FieldFormat = "format"
	// FieldCategory is the extraction pass a warning came from.
	FieldCategory = "category"
	// FieldRunID identifies a batch run.
	FieldRunID = "run_id"
)

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Component(name string) slog.Attr { return slog.String(FieldComponent, name) }

func Path(path string) slog.Attr { return slog.String(FieldPath, path) }

func RunID(id string) slog.Attr { return slog.String(FieldRunID, id) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// WithComponent tags every line from the returned logger.
func WithComponent(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(Component(name))
}
