package dawparse_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"dawprobe/internal/dawparse"
	"dawprobe/internal/logging"
)

func TestTaxonomyClassification(t *testing.T) {
	logger := logging.NewNop()

	unsupported := dawparse.UnsupportedFormatError(logger, "/music/a.xyz", "no parser")
	if !errors.Is(unsupported, dawparse.ErrUnsupportedFormat) {
		t.Fatal("unsupported error missing its marker")
	}
	if errors.Is(unsupported, dawparse.ErrCorruptedFile) {
		t.Fatal("unsupported error should not classify as corrupted")
	}

	cause := fmt.Errorf("zip: not a valid zip file")
	corrupted := dawparse.CorruptedFileError(logger, "/music/b.als", "open container", cause)
	if !errors.Is(corrupted, dawparse.ErrCorruptedFile) {
		t.Fatal("corrupted error missing its marker")
	}
	if !strings.Contains(corrupted.Error(), "/music/b.als") {
		t.Fatalf("message should carry the path: %s", corrupted)
	}
	if !strings.Contains(corrupted.Error(), "zip") {
		t.Fatalf("message should carry the cause: %s", corrupted)
	}
}

func TestParseErrorExposesFields(t *testing.T) {
	err := dawparse.UnsupportedFormatError(logging.NewNop(), "/p/x.txt", "no parser")
	var parseErr *dawparse.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatal("expected *ParseError")
	}
	if parseErr.Path != "/p/x.txt" || parseErr.Message != "no parser" {
		t.Fatalf("unexpected fields: %+v", parseErr)
	}
}
