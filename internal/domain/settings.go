package domain

import "sort"

// AccessSettings is the deployment-wide access-control document. A single row
// exists per deployment; admin edits overwrite it wholesale (last write wins,
// no version field).
//
// Precedence when classifying a test: GlobalFreeAccess overrides everything,
// SpecificPremiumTests overrides the FreeTestsCount rule.
type AccessSettings struct {
	FreeTestsEnabled     bool  `json:"free_tests_enabled"`
	FreeTestsCount       int   `json:"free_tests_count"`
	PremiumRequired      bool  `json:"premium_required"`
	GlobalFreeAccess     bool  `json:"global_free_access"`
	SpecificPremiumTests []int `json:"specific_premium_tests"`
}

// DefaultAccessSettings returns the first-run configuration: five free
// leading tests, premium required beyond them.
func DefaultAccessSettings() AccessSettings {
	return AccessSettings{
		FreeTestsEnabled:     true,
		FreeTestsCount:       5,
		PremiumRequired:      true,
		GlobalFreeAccess:     false,
		SpecificPremiumTests: []int{},
	}
}

// Clone returns a deep copy so callers cannot mutate a shared slice.
func (s AccessSettings) Clone() AccessSettings {
	out := s
	out.SpecificPremiumTests = make([]int, len(s.SpecificPremiumTests))
	copy(out.SpecificPremiumTests, s.SpecificPremiumTests)
	return out
}

// Normalize clamps the free count and deduplicates the specific-premium
// positions. Positions are 1-based; non-positive entries are dropped.
func (s *AccessSettings) Normalize() {
	if s.FreeTestsCount < 0 {
		s.FreeTestsCount = 0
	}
	seen := make(map[int]struct{}, len(s.SpecificPremiumTests))
	cleaned := make([]int, 0, len(s.SpecificPremiumTests))
	for _, pos := range s.SpecificPremiumTests {
		if pos <= 0 {
			continue
		}
		if _, ok := seen[pos]; ok {
			continue
		}
		seen[pos] = struct{}{}
		cleaned = append(cleaned, pos)
	}
	sort.Ints(cleaned)
	s.SpecificPremiumTests = cleaned
}

// IsSpecificPremium reports whether the 1-based catalog position is explicitly
// flagged as premium.
func (s AccessSettings) IsSpecificPremium(position int) bool {
	for _, pos := range s.SpecificPremiumTests {
		if pos == position {
			return true
		}
	}
	return false
}
