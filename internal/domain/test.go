package domain

// ColorReaction describes one expected color outcome for a reagent test and
// the substances it presumptively indicates.
type ColorReaction struct {
	// ColorKey is the canonical lower-case English color name used for
	// matching observed colors, e.g. "purple-black".
	ColorKey   string        `json:"color_key"`
	Color      LocalizedText `json:"color"`
	Substances []string      `json:"substances"`
	// Confidence is a percentage. Presumptive color tests never reach 100;
	// values come straight from the catalog data.
	Confidence int `json:"confidence"`
}

// ReagentTest is a single presumptive color-spot test in the catalog.
// Position is the 1-based catalog ordering the access rules key off.
type ReagentTest struct {
	Slug        string          `json:"slug"`
	Position    int             `json:"position"`
	Name        LocalizedText   `json:"name"`
	Description LocalizedText   `json:"description"`
	Preparation LocalizedText   `json:"preparation"`
	SafetyNotes LocalizedText   `json:"safety_notes"`
	Reactions   []ColorReaction `json:"reactions"`
}

// Index returns the 0-based position used by the access evaluator.
func (t ReagentTest) Index() int {
	return t.Position - 1
}

// SubstanceMatch is one ranked outcome of interpreting an observed color.
type SubstanceMatch struct {
	Substance  string        `json:"substance"`
	Confidence int           `json:"confidence"`
	ColorKey   string        `json:"color_key"`
	Color      LocalizedText `json:"color"`
}
