package catalog

import (
	"testing"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Len() < 5 {
		t.Fatalf("catalog too small: %d tests", c.Len())
	}

	for i, test := range c.All() {
		if test.Position != i+1 {
			t.Fatalf("position %d at index %d", test.Position, i)
		}
		if test.Name.En == "" || test.Name.Ar == "" {
			t.Fatalf("test %q missing a localized name", test.Slug)
		}
		if len(test.Reactions) == 0 {
			t.Fatalf("test %q has no reactions", test.Slug)
		}
		for _, reaction := range test.Reactions {
			if reaction.ColorKey == "" || len(reaction.Substances) == 0 {
				t.Fatalf("test %q has an incomplete reaction: %+v", test.Slug, reaction)
			}
			if reaction.Confidence <= 0 || reaction.Confidence >= 100 {
				t.Fatalf("test %q reaction %q confidence out of range: %d", test.Slug, reaction.ColorKey, reaction.Confidence)
			}
		}
	}
}

func TestLookups(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	marquis, ok := c.ByPosition(1)
	if !ok || marquis.Slug != "marquis" {
		t.Fatalf("ByPosition(1) = %+v, ok=%v", marquis, ok)
	}

	bySlug, ok := c.BySlug("marquis")
	if !ok || bySlug.Position != 1 {
		t.Fatalf("BySlug(marquis) = %+v, ok=%v", bySlug, ok)
	}

	if _, ok := c.ByPosition(c.Len() + 1); ok {
		t.Fatalf("ByPosition past the end should miss")
	}
	if _, ok := c.BySlug("no-such-test"); ok {
		t.Fatalf("BySlug for unknown slug should miss")
	}
}

func TestInterpretExactMatch(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	marquis, _ := c.BySlug("marquis")

	matches := Interpret(marquis, "Purple Black")
	if len(matches) == 0 {
		t.Fatalf("expected matches for purple-black on marquis")
	}
	if matches[0].Substance != "Heroin" {
		t.Fatalf("top match = %q, want Heroin", matches[0].Substance)
	}
	if matches[0].Confidence != 85 {
		t.Fatalf("exact match confidence = %d, want 85", matches[0].Confidence)
	}
}

func TestInterpretPartialMatchIsPenalized(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	marquis, _ := c.BySlug("marquis")

	// "purple" matches "purple" exactly (MDMA row) and "purple-black"
	// partially (heroin row); the exact match must rank first.
	matches := Interpret(marquis, "purple")
	if len(matches) < 3 {
		t.Fatalf("expected exact and partial matches, got %d", len(matches))
	}
	if matches[0].Substance != "MDMA" {
		t.Fatalf("top match = %q, want MDMA", matches[0].Substance)
	}
	var sawPenalized bool
	for _, m := range matches {
		if m.ColorKey == "purple-black" {
			sawPenalized = true
			if m.Confidence != 85-partialMatchPenalty {
				t.Fatalf("penalized confidence = %d, want %d", m.Confidence, 85-partialMatchPenalty)
			}
		}
	}
	if !sawPenalized {
		t.Fatalf("partial purple-black match missing: %+v", matches)
	}
}

func TestInterpretUnknownColor(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	marquis, _ := c.BySlug("marquis")

	if matches := Interpret(marquis, "chartreuse"); len(matches) != 0 {
		t.Fatalf("unexpected matches for unknown color: %+v", matches)
	}
	if matches := Interpret(marquis, "   "); matches != nil {
		t.Fatalf("blank color should yield nil, got %+v", matches)
	}
}
