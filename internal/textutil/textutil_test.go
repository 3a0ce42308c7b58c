package textutil_test

import (
	"testing"

	"dawprobe/internal/textutil"
)

func TestStem(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/music/my_song.als", "my_song"},
		{"/music/bundle.logicx", "bundle"},
		{"weird:name?.flp", "weird-name"},
		{"", "project"},
	}
	for _, tc := range cases {
		if got := textutil.Stem(tc.path); got != tc.want {
			t.Fatalf("Stem(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/music/summer_mix.als", "Summer Mix"},
		{"dark-ambient.v2.flp", "Dark Ambient V2"},
		{"", "Untitled Project"},
	}
	for _, tc := range cases {
		if got := textutil.DeriveTitle(tc.path); got != tc.want {
			t.Fatalf("DeriveTitle(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := textutil.SanitizeFileName(`a/b:c*d?`); got != "a-b-c-d" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
}
