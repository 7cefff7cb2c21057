package tui

import (
	"strings"
	"testing"
)

func TestEditRune(t *testing.T) {
	tests := []struct {
		name string
		text string
		key  string
		want string
	}{
		{"append letter", "akir", "a", "akira"},
		{"append space", "one", " ", "one "},
		{"backspace", "akira", "backspace", "akir"},
		{"backspace empty", "", "backspace", ""},
		{"backspace multibyte", "café", "backspace", "caf"},
		{"ignore enter", "text", "enter", "text"},
		{"ignore ctrl", "text", "ctrl+c", "text"},
		{"multibyte rune", "caf", "é", "café"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editRune(tc.text, tc.key); got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.text, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneClampsLength(t *testing.T) {
	text := strings.Repeat("a", maxInputLen)
	if got := editRune(text, "b"); got != text {
		t.Error("expected input at maxInputLen to stay unchanged")
	}
}

func TestTruncateToHeight(t *testing.T) {
	s := "one\ntwo\nthree\nfour\n"

	if got := truncateToHeight(s, 2); got != "one\ntwo\n" {
		t.Errorf("truncateToHeight(2) = %q", got)
	}
	if got := truncateToHeight(s, 10); got != s {
		t.Errorf("expected unchanged string when it fits, got %q", got)
	}
	if got := truncateToHeight(s, 0); got != s {
		t.Errorf("expected unchanged string for zero height, got %q", got)
	}
}
