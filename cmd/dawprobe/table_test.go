package main

import (
	"io"
	"strings"
	"testing"
)

func TestColorizeState(t *testing.T) {
	cases := []struct {
		state string
		want  string
	}{
		{"completed", ansiGreen + "completed" + ansiReset},
		{"succeeded", ansiGreen + "succeeded" + ansiReset},
		{"interrupted", ansiYellow + "interrupted" + ansiReset},
		{"failed", ansiRed + "failed" + ansiReset},
		{"unknown", "unknown"},
	}
	for _, tc := range cases {
		if got := colorizeState(tc.state, true); got != tc.want {
			t.Fatalf("colorizeState(%q, true) = %q, want %q", tc.state, got, tc.want)
		}
		if got := colorizeState(tc.state, false); got != tc.state {
			t.Fatalf("colorizeState(%q, false) = %q, want bare state", tc.state, got)
		}
	}
}

func TestShouldColorizeNonTerminal(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("non-file writer must not colorize")
	}
}

func TestRenderTableStructure(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Count"},
		[][]string{{"alpha", "1"}, {"beta", "22"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	for _, want := range []string{"Name", "Count", "alpha", "22"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
