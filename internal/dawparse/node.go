package dawparse

import (
	"strconv"
	"strings"
)

// Node is the dialect-neutral tree both XML documents and the decoded FL
// Studio object graph are loaded into, so the alias-driven extraction
// logic runs uniformly over all three containers. Names and attribute
// keys are matched case-insensitively because dialects disagree on
// casing across releases.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Parent   *Node
	Children []*Node
}

// NewNode builds a node and links it under parent.
func NewNode(parent *Node, name string) *Node {
	n := &Node{Name: name, Attrs: make(map[string]string), Parent: parent}
	if parent != nil {
		parent.Children = append(parent.Children, n)
	}
	return n
}

// FindAll returns every descendant (depth-first, document order) whose
// name equals name, ignoring case.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	n.walk(func(d *Node) {
		if strings.EqualFold(d.Name, name) {
			out = append(out, d)
		}
	})
	return out
}

// FindFirst returns the first matching descendant or nil.
func (n *Node) FindFirst(name string) *Node {
	matches := n.FindAll(name)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (n *Node) walk(fn func(*Node)) {
	for _, child := range n.Children {
		fn(child)
		child.walk(fn)
	}
}

// Attr returns the first attribute present among names, ignoring case.
func (n *Node) Attr(names ...string) (string, bool) {
	for _, want := range names {
		for key, value := range n.Attrs {
			if strings.EqualFold(key, want) {
				return value, true
			}
		}
	}
	return "", false
}

// AttrFloat parses the first present attribute as a float, returning def
// on absence or a non-numeric value.
func (n *Node) AttrFloat(def float64, names ...string) float64 {
	raw, ok := n.Attr(names...)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return v
}

// AttrInt parses the first present attribute as an int, returning def on
// absence or a non-numeric value.
func (n *Node) AttrInt(def int, names ...string) int {
	raw, ok := n.Attr(names...)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		// Some dialects write integers as "4.0".
		f, ferr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if ferr != nil {
			return def
		}
		return int(f)
	}
	return v
}

// AttrBool interprets common truthy encodings ("true", "1", "yes", "on").
func (n *Node) AttrBool(def bool, names ...string) bool {
	raw, ok := n.Attr(names...)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return def
}

// NearestAncestor walks toward the root and returns the first ancestor
// whose name matches any of names, or nil.
func (n *Node) NearestAncestor(names ...string) *Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		for _, want := range names {
			if strings.EqualFold(cur.Name, want) {
				return cur
			}
		}
	}
	return nil
}
