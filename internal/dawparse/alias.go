package dawparse

// Aliases is a dialect's schema-drift table: for each extraction concern,
// an ordered list of element names (and attribute names) the concern has
// gone by across format releases. Lookups take the first candidate that
// yields any results, so the fallback chain is data rather than nested
// conditionals and can be exercised in isolation from parser logic.
type Aliases struct {
	Elements map[string][]string
	Attrs    map[string][]string
}

// FindNodes returns the matches for the first element alias under concern
// that yields any, searching the whole subtree below root. Absence of
// every alias yields nil, never an error.
func (a Aliases) FindNodes(root *Node, concern string) []*Node {
	if root == nil {
		return nil
	}
	for _, name := range a.Elements[concern] {
		if matches := root.FindAll(name); len(matches) > 0 {
			return matches
		}
	}
	return nil
}

// AttrValue returns the value of the first attribute alias under concern
// that is present on n.
func (a Aliases) AttrValue(n *Node, concern string) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.Attr(a.Attrs[concern]...)
}

// AttrFloat is AttrValue parsed as a float with a default.
func (a Aliases) AttrFloat(n *Node, concern string, def float64) float64 {
	if n == nil {
		return def
	}
	return n.AttrFloat(def, a.Attrs[concern]...)
}

// ElementNames exposes the raw alias chain for a concern, used for
// ancestor walks that need the track-like vocabulary.
func (a Aliases) ElementNames(concern string) []string {
	return a.Elements[concern]
}
