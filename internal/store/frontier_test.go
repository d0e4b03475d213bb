package store

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunesShortStringUnchanged(t *testing.T) {
	if got := truncateRunes("short", 4000); got != "short" {
		t.Errorf("truncateRunes(short) = %q, want unchanged", got)
	}
}

func TestTruncateRunesCutsOnRuneBoundary(t *testing.T) {
	// Cyrillic text embedded in a wrapped fetch error, as would occur
	// when an error message quotes a snippet of a lenta.ru/rbc.ru page.
	s := strings.Repeat("привет мир ", 1000)

	got := truncateRunes(s, maxErrorLen)

	if !utf8.ValidString(got) {
		t.Fatalf("truncateRunes produced invalid UTF-8: %q", got)
	}

	if n := utf8.RuneCountInString(got); n != maxErrorLen {
		t.Errorf("truncateRunes rune count = %d, want %d", n, maxErrorLen)
	}
}
