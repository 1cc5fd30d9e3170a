package intent

import (
	"strings"
	"testing"
)

func TestKeywords(t *testing.T) {
	got := Keywords("Refactor user-facing authentication, with the OAuth flow!")
	want := []string{"refactor", "userfacing", "authentication", "oauth", "flow"}
	if len(got) != len(want) {
		t.Fatalf("Keywords() = %v, want %v", got, want)
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("Keywords() missing %q", w)
		}
	}
	if got["with"] || got["the"] {
		t.Error("stop words should be dropped")
	}
}

func TestOverlap(t *testing.T) {
	a := Keywords("Refactor user authentication to use OAuth")
	b := Keywords("Implement user authentication with JWT tokens")
	if n := Overlap(a, b); n != 2 {
		t.Errorf("Overlap() = %d, want 2", n)
	}
	if n := Overlap(a, Keywords("")); n != 0 {
		t.Errorf("Overlap() with empty = %d, want 0", n)
	}
}

func TestTruncate(t *testing.T) {
	short := "short prompt"
	if got := Truncate(short, 100); got != short {
		t.Errorf("Truncate() = %q, want unchanged", got)
	}

	long := strings.Repeat("é", 120)
	got := Truncate(long, 100)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncate() = %q, want ellipsis", got)
	}
	if n := len([]rune(strings.TrimSuffix(got, "..."))); n != 100 {
		t.Errorf("kept %d runes, want 100", n)
	}
}
