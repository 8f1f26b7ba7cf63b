package catalog

import (
	"sort"
	"strings"

	"colorspot-server/internal/domain"
)

// partialMatchPenalty is subtracted from a reaction's confidence when the
// observed color only partially matches its color key.
const partialMatchPenalty = 25

// Interpret ranks the substances a test's color chart presumptively indicates
// for an observed color. Exact color-key matches keep the chart confidence;
// partial matches (one key containing the other) are penalized. An empty
// result means the observed color is not on the chart.
func Interpret(test domain.ReagentTest, observedColor string) []domain.SubstanceMatch {
	observed := normalizeColor(observedColor)
	if observed == "" {
		return nil
	}

	var matches []domain.SubstanceMatch
	for _, reaction := range test.Reactions {
		confidence := 0
		switch {
		case reaction.ColorKey == observed:
			confidence = reaction.Confidence
		case strings.Contains(reaction.ColorKey, observed) || strings.Contains(observed, reaction.ColorKey):
			confidence = reaction.Confidence - partialMatchPenalty
		}
		if confidence <= 0 {
			continue
		}
		for _, substance := range reaction.Substances {
			matches = append(matches, domain.SubstanceMatch{
				Substance:  substance,
				Confidence: confidence,
				ColorKey:   reaction.ColorKey,
				Color:      reaction.Color,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// normalizeColor lowercases and hyphenates an observed color so "Purple
// Black" and "purple-black" compare equal.
func normalizeColor(color string) string {
	color = strings.ToLower(strings.TrimSpace(color))
	color = strings.ReplaceAll(color, "_", " ")
	color = strings.Join(strings.Fields(color), "-")
	return color
}
