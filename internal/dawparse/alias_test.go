package dawparse_test

import (
	"testing"

	"dawprobe/internal/dawparse"
)

var testAliases = dawparse.Aliases{
	Elements: map[string][]string{
		"clip": {"NewClip", "OldClip"},
	},
	Attrs: map[string][]string{
		"tempo": {"Bpm", "Tempo", "Value"},
	},
}

func TestFindNodesFirstAliasWins(t *testing.T) {
	root := dawparse.NewNode(nil, "Doc")
	dawparse.NewNode(root, "OldClip")
	dawparse.NewNode(root, "OldClip")

	// Only the legacy name is present, so the chain falls through to it.
	if got := len(testAliases.FindNodes(root, "clip")); got != 2 {
		t.Fatalf("FindNodes = %d matches, want 2", got)
	}

	// Once the modern name appears, legacy matches are not mixed in.
	dawparse.NewNode(root, "NewClip")
	matches := testAliases.FindNodes(root, "clip")
	if len(matches) != 1 || matches[0].Name != "NewClip" {
		t.Fatalf("expected only the first-alias match, got %d", len(matches))
	}
}

func TestFindNodesAbsentConcern(t *testing.T) {
	root := dawparse.NewNode(nil, "Doc")
	if testAliases.FindNodes(root, "unknown") != nil {
		t.Fatal("unknown concern should yield nil")
	}
	if testAliases.FindNodes(nil, "clip") != nil {
		t.Fatal("nil root should yield nil")
	}
}

func TestAttrValueChain(t *testing.T) {
	n := dawparse.NewNode(nil, "Tempo")
	n.Attrs["Value"] = "120"
	if v, ok := testAliases.AttrValue(n, "tempo"); !ok || v != "120" {
		t.Fatalf("AttrValue = %q, %v", v, ok)
	}
	n.Attrs["Bpm"] = "140"
	if v, _ := testAliases.AttrValue(n, "tempo"); v != "140" {
		t.Fatalf("earlier alias should win, got %q", v)
	}
	if got := testAliases.AttrFloat(n, "tempo", 0); got != 140 {
		t.Fatalf("AttrFloat = %v", got)
	}
}
