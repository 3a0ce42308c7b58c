package dawparse_test

import (
	"strings"
	"testing"

	"dawprobe/internal/dawparse"
)

func TestDecodeXMLBuildsTree(t *testing.T) {
	doc := `<?xml version="1.0"?>
<Ableton Creator="Ableton Live 11.0">
  <LiveSet>
    <Tracks>
      <MidiTrack><Name><EffectiveName Value="Keys"/></Name></MidiTrack>
    </Tracks>
  </LiveSet>
</Ableton>`
	root, err := dawparse.DecodeXML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if root.Name != "Ableton" {
		t.Fatalf("root = %q", root.Name)
	}
	if v, _ := root.Attr("Creator"); v != "Ableton Live 11.0" {
		t.Fatalf("creator = %q", v)
	}
	if root.FindFirst("EffectiveName") == nil {
		t.Fatal("nested element not reachable from root")
	}
}

func TestDecodeXMLAcceptsDeclaredCharset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?><Project name="caf` + "\xe9" + `"/>`
	root, err := dawparse.DecodeXML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, _ := root.Attr("name"); v != "café" {
		t.Fatalf("name = %q", v)
	}
}

func TestDecodeXMLRejectsEmptyInput(t *testing.T) {
	if _, err := dawparse.DecodeXML(strings.NewReader("   ")); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestTrackNameForWalksToOwningTrack(t *testing.T) {
	doc := `<Doc>
  <MidiTrack>
    <Name><EffectiveName Value="Bass"/></Name>
    <MidiClip><Notes/></MidiClip>
  </MidiTrack>
</Doc>`
	root, err := dawparse.DecodeXML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	aliases := dawparse.Aliases{
		Elements: map[string][]string{
			"track":      {"MidiTrack"},
			"track_name": {"EffectiveName"},
		},
		Attrs: map[string][]string{
			"track_name": {"Name"},
		},
	}
	clip := root.FindFirst("MidiClip")
	if got := dawparse.TrackNameFor(aliases, clip, "fallback"); got != "Bass" {
		t.Fatalf("TrackNameFor = %q", got)
	}
	orphan := dawparse.NewNode(nil, "MidiClip")
	if got := dawparse.TrackNameFor(aliases, orphan, "fallback"); got != "fallback" {
		t.Fatalf("fallback not honored: %q", got)
	}
}
