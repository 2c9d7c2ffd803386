package detect_test

import (
	"testing"

	"github.com/geo-agent/geo-workflows/internal/detect"
	"github.com/geo-agent/geo-workflows/internal/models"
)

func TestFindMatchesExactWholeWord(t *testing.T) {
	brand := models.Brand{Name: "ACME", Aliases: []string{"Acme Inc", "acme"}}

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"whole word match", "I really liked how Acme Inc handled returns.", 1},
		{"case insensitive", "ACME is great, acme is fine", 2},
		{"no mid-word match in exact mode", "The acmeist movement has nothing to do with it", 0},
		{"punctuation is a boundary", "Try Acme, or don't.", 1},
		{"no mention", "Way better than Globex.", 0},
		{"empty text", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := detect.FindMatches(tt.text, brand, models.MatchModeExactOnly)
			if len(matches) != tt.expected {
				t.Errorf("FindMatches(%q) returned %d matches, want %d", tt.text, len(matches), tt.expected)
			}
		})
	}
}

func TestFindMatchesSubstringMode(t *testing.T) {
	brand := models.Brand{Name: "ACME", Aliases: []string{"acme"}}
	text := "The acmeist movement"

	if got := detect.FindMatches(text, brand, models.MatchModeExactOnly); len(got) != 0 {
		t.Errorf("exact mode matched mid-word: %+v", got)
	}
	got := detect.FindMatches(text, brand, models.MatchModeSubstring)
	if len(got) != 1 {
		t.Fatalf("substring mode returned %d matches, want 1", len(got))
	}
	if got[0].StartOffset != 4 || got[0].EndOffset != 8 {
		t.Errorf("substring match span = [%d,%d), want [4,8)", got[0].StartOffset, got[0].EndOffset)
	}
}

func TestFindMatchesAccentFoldedOffsets(t *testing.T) {
	brand := models.Brand{Name: "Café Rouge", Aliases: []string{"cafe rouge"}}
	text := "Le Café Rouge est sympa"

	matches := detect.FindMatches(text, brand, models.MatchModeExactOnly)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	slice := string([]rune(text)[m.StartOffset:m.EndOffset])
	if slice != "Café Rouge" {
		t.Errorf("original-text slice = %q, want %q", slice, "Café Rouge")
	}
	if norm := detect.Normalize(slice); norm != "cafe rouge" {
		t.Errorf("normalized slice = %q, want %q", norm, "cafe rouge")
	}
}

func TestFindMatchesWhitespaceCollapsedOffsets(t *testing.T) {
	brand := models.Brand{Name: "Seven Seventy", Aliases: []string{"seven seventy"}}
	text := "Seven   Seventy rocks"

	matches := detect.FindMatches(text, brand, models.MatchModeExactOnly)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.StartOffset != 0 {
		t.Errorf("start offset = %d, want 0", m.StartOffset)
	}
	slice := string([]rune(text)[m.StartOffset:m.EndOffset])
	if slice != "Seven   Seventy" {
		t.Errorf("original-text slice = %q, want %q", slice, "Seven   Seventy")
	}
}

// A short numeric alias must not be double counted when the phrase alias has
// already claimed the same span, but a standalone occurrence still counts.
func TestFindMatchesOverlapDeduplication(t *testing.T) {
	brand := models.Brand{Name: "Seven Seventy", Aliases: []string{"770", "seven seventy"}}
	text := "We love seven seventy (770) pizza"

	matches := detect.FindMatches(text, brand, models.MatchModeExactOnly)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches (phrase + parenthetical), got %d: %+v", len(matches), matches)
	}
	if matches[0].StartOffset >= matches[1].StartOffset {
		t.Errorf("matches not ordered by start: %+v", matches)
	}
	first := string([]rune(text)[matches[0].StartOffset:matches[0].EndOffset])
	second := string([]rune(text)[matches[1].StartOffset:matches[1].EndOffset])
	if first != "seven seventy" || second != "770" {
		t.Errorf("match slices = %q, %q; want %q, %q", first, second, "seven seventy", "770")
	}
}

func TestFindMatchesSameStartKeepsLongerAlias(t *testing.T) {
	brand := models.Brand{Name: "Seven Seventy", Aliases: []string{"seven", "seven seventy"}}
	text := "seven seventy pizza"

	matches := detect.FindMatches(text, brand, models.MatchModeExactOnly)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %+v", len(matches), matches)
	}
	slice := string([]rune(text)[matches[0].StartOffset:matches[0].EndOffset])
	if slice != "seven seventy" {
		t.Errorf("kept match = %q, want the longer phrase", slice)
	}
}

func TestFindMatchesEdgeCases(t *testing.T) {
	t.Run("empty alias never matches", func(t *testing.T) {
		brand := models.Brand{Name: "X", Aliases: []string{"", "   "}}
		if got := detect.FindMatches("anything at all", brand, models.MatchModeSubstring); len(got) != 0 {
			t.Errorf("empty aliases produced matches: %+v", got)
		}
	})

	t.Run("duplicate aliases are harmless", func(t *testing.T) {
		brand := models.Brand{Name: "ACME", Aliases: []string{"acme", "Acme", "ACME"}}
		got := detect.FindMatches("acme makes everything", brand, models.MatchModeExactOnly)
		if len(got) != 1 {
			t.Errorf("duplicate aliases counted %d times, want 1", len(got))
		}
	})

	t.Run("non-overlapping repeat counts each occurrence", func(t *testing.T) {
		brand := models.Brand{Name: "ACME", Aliases: []string{"acme"}}
		got := detect.FindMatches("acme acme acme", brand, models.MatchModeExactOnly)
		if len(got) != 3 {
			t.Errorf("got %d matches, want 3", len(got))
		}
	})

	t.Run("offset invariant holds", func(t *testing.T) {
		brand := models.Brand{Name: "ACME", Aliases: []string{"acme"}}
		text := "try Acme today"
		for _, m := range detect.FindMatches(text, brand, models.MatchModeExactOnly) {
			if m.StartOffset < 0 || m.StartOffset >= m.EndOffset || m.EndOffset > len([]rune(text)) {
				t.Errorf("offset invariant violated: %+v", m)
			}
		}
	})
}
