package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorspot-server/internal/domain"
)

func baseSettings() domain.AccessSettings {
	return domain.AccessSettings{
		FreeTestsEnabled:     true,
		FreeTestsCount:       5,
		PremiumRequired:      true,
		GlobalFreeAccess:     false,
		SpecificPremiumTests: []int{},
	}
}

func TestEvaluateGlobalFreeAccessWinsOverEverything(t *testing.T) {
	settings := baseSettings()
	settings.GlobalFreeAccess = true
	settings.SpecificPremiumTests = []int{1, 2, 100}
	settings.FreeTestsEnabled = false

	for _, idx := range []int{0, 1, 4, 5, 99} {
		decision := Evaluate(idx, false, settings)
		require.True(t, decision.CanAccess, "index %d", idx)
		assert.Equal(t, domain.ReasonGlobalFreeAccess, decision.Reason)
		assert.False(t, decision.RequiresSubscription)
	}
}

func TestEvaluateSpecificPremiumRequiresPaidPlan(t *testing.T) {
	settings := baseSettings()
	settings.SpecificPremiumTests = []int{3, 7}

	// 1-based position 3 is 0-based index 2.
	denied := Evaluate(2, false, settings)
	assert.False(t, denied.CanAccess)
	assert.True(t, denied.RequiresSubscription)
	assert.Equal(t, domain.ReasonSpecificPremium, denied.Reason)

	granted := Evaluate(2, true, settings)
	assert.True(t, granted.CanAccess)
	assert.False(t, granted.RequiresSubscription)
}

func TestEvaluateSpecificPremiumBeatsFreeCount(t *testing.T) {
	// Scenario B from the access rules: position 2 flagged premium even
	// though index 1 sits inside the free range.
	settings := baseSettings()
	settings.SpecificPremiumTests = []int{2}

	decision := Evaluate(1, false, settings)
	assert.False(t, decision.CanAccess)
	assert.True(t, decision.RequiresSubscription)
}

func TestEvaluateFreeRange(t *testing.T) {
	settings := baseSettings()
	for idx := 0; idx < 5; idx++ {
		decision := Evaluate(idx, false, settings)
		assert.True(t, decision.CanAccess, "index %d", idx)
		assert.Equal(t, domain.ReasonTestAccessible, decision.Reason)
	}
}

func TestEvaluatePremiumRangeFollowsPlan(t *testing.T) {
	settings := baseSettings()

	for _, tc := range []struct {
		idx  int
		paid bool
		want bool
	}{
		{5, false, false},
		{5, true, true},
		{17, false, false},
		{17, true, true},
	} {
		decision := Evaluate(tc.idx, tc.paid, settings)
		assert.Equal(t, tc.want, decision.CanAccess, "index %d paid %v", tc.idx, tc.paid)
		if !tc.want {
			assert.True(t, decision.RequiresSubscription)
			assert.Equal(t, domain.ReasonAdvancedPremium, decision.Reason)
		}
	}
}

func TestEvaluateDefaultGrantWhenNoRuleMatches(t *testing.T) {
	// Free tier and premium gating both off: nothing claims the test, and
	// the documented behavior is to let it through.
	settings := domain.AccessSettings{
		FreeTestsEnabled:     false,
		FreeTestsCount:       5,
		PremiumRequired:      false,
		GlobalFreeAccess:     false,
		SpecificPremiumTests: []int{},
	}

	decision := Evaluate(2, false, settings)
	assert.True(t, decision.CanAccess)
	assert.Equal(t, domain.ReasonDefaultGrant, decision.Reason)
}

func TestEvaluateDisabledFreeTierStillGatesPremiumRange(t *testing.T) {
	settings := baseSettings()
	settings.FreeTestsEnabled = false

	// Inside the nominal free range nothing matches rules 1-4 except via
	// the default grant; beyond it premium gating still applies.
	inRange := Evaluate(1, false, settings)
	assert.True(t, inRange.CanAccess)

	beyond := Evaluate(9, false, settings)
	assert.False(t, beyond.CanAccess)
	assert.True(t, beyond.RequiresSubscription)
}

func TestConsumesFreeSlot(t *testing.T) {
	settings := baseSettings()
	assert.True(t, ConsumesFreeSlot(0, settings))
	assert.True(t, ConsumesFreeSlot(4, settings))
	assert.False(t, ConsumesFreeSlot(5, settings))
}
