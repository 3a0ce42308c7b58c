package dawparse

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// DecodeXML parses an XML document into a Node tree. The decoder accepts
// non-UTF-8 encodings via a charset reader because project files written
// on older systems regularly declare latin-1 or UTF-16.
func DecodeXML(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	root := &Node{Name: "", Attrs: map[string]string{}}
	current := root
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := NewNode(current, t.Name.Local)
			for _, attr := range t.Attr {
				node.Attrs[attr.Name.Local] = attr.Value
			}
			current = node
		case xml.EndElement:
			if current.Parent != nil {
				current = current.Parent
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text != "" {
				if current.Text != "" {
					current.Text += " "
				}
				current.Text += text
			}
		}
	}
	if len(root.Children) == 0 {
		return nil, fmt.Errorf("decode xml: no root element")
	}
	// Return the document element, keeping the synthetic root as parent so
	// ancestor walks terminate cleanly.
	return root.Children[0], nil
}

// DecodeXMLFile opens path and decodes it as XML.
func DecodeXMLFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeXML(f)
}

// TrackNameFor resolves a node's owning track by walking to the nearest
// enclosing track-like ancestor and reading its name through the
// dialect's alias table. Falls back to placeholder when no ancestor
// carries a usable name.
func TrackNameFor(aliases Aliases, n *Node, placeholder string) string {
	ancestor := n.NearestAncestor(aliases.ElementNames("track")...)
	if ancestor == nil {
		return placeholder
	}
	if name, ok := aliases.AttrValue(ancestor, "track_name"); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	// Some dialects nest the name in a child element instead of an attribute.
	for _, child := range aliases.Elements["track_name"] {
		if nameNode := ancestor.FindFirst(child); nameNode != nil {
			if v, ok := nameNode.Attr("Value", "value"); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
			if strings.TrimSpace(nameNode.Text) != "" {
				return strings.TrimSpace(nameNode.Text)
			}
		}
	}
	return placeholder
}
