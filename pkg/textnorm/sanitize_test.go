package textnorm

import (
	"testing"
	"unicode/utf8"
)

func TestSanitize_SmartQuotes(t *testing.T) {
	input := "“hello” and ‘world’"
	expected := `"hello" and 'world'`
	if got := Sanitize(input); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSanitize_StripsZeroWidthAndControl(t *testing.T) {
	input := "a\u200bb\x01c\ufeffd"
	if got := Sanitize(input); got != "abcd" {
		t.Errorf("expected %q, got %q", "abcd", got)
	}
}

func TestSanitize_KeepsNewlines(t *testing.T) {
	input := "line1\nline2"
	if got := Sanitize(input); got != input {
		t.Errorf("expected newlines preserved, got %q", got)
	}
}

func TestSanitize_ExpandsTabs(t *testing.T) {
	if got := Sanitize("a\tb"); got != "a  b" {
		t.Errorf("expected two spaces, got %q", got)
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("héllo", 3); got != "hél" {
		t.Errorf("expected %q, got %q", "hél", got)
	}
	if got := TruncateRunes("abc", 10); got != "abc" {
		t.Errorf("expected input unchanged, got %q", got)
	}
	if got := TruncateRunes("ééé", 2); !utf8.ValidString(got) || got != "éé" {
		t.Errorf("expected valid %q, got %q", "éé", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"“quoted”\twith​tabs",
		"  padded  ",
		"multi\nline\n’text",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
