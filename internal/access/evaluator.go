// Package access holds the pure decision function that classifies a catalog
// position as free or premium under the current access settings. It performs
// no I/O; callers supply the settings snapshot.
package access

import "colorspot-server/internal/domain"

// Evaluate decides whether a test at the given 0-based catalog index is
// accessible. Rules are checked in order, first match wins:
//
//  1. global free access grants everything;
//  2. a position listed in SpecificPremiumTests requires a paid plan even
//     inside the free range;
//  3. positions below FreeTestsCount are free when the free tier is enabled;
//  4. positions at or beyond FreeTestsCount require a paid plan when
//     PremiumRequired is set;
//  5. otherwise access is granted.
//
// Rule 5 is deliberately permissive. The settings combinations that reach it
// (free tier and premium gating both disabled) leave no rule claiming the
// test, and the product behavior is to let it through. Flagged for product
// review; do not flip to deny here without that decision.
func Evaluate(testIndex int, userHasPaidPlan bool, settings domain.AccessSettings) domain.AccessDecision {
	if settings.GlobalFreeAccess {
		return domain.AccessDecision{
			CanAccess: true,
			Reason:    domain.ReasonGlobalFreeAccess,
		}
	}

	if settings.IsSpecificPremium(testIndex + 1) {
		if userHasPaidPlan {
			return domain.AccessDecision{
				CanAccess: true,
				Reason:    domain.ReasonTestAccessible,
			}
		}
		return domain.AccessDecision{
			CanAccess:            false,
			Reason:               domain.ReasonSpecificPremium,
			RequiresSubscription: true,
		}
	}

	if settings.FreeTestsEnabled && testIndex < settings.FreeTestsCount {
		return domain.AccessDecision{
			CanAccess: true,
			Reason:    domain.ReasonTestAccessible,
		}
	}

	if settings.PremiumRequired && testIndex >= settings.FreeTestsCount {
		if userHasPaidPlan {
			return domain.AccessDecision{
				CanAccess: true,
				Reason:    domain.ReasonTestAccessible,
			}
		}
		return domain.AccessDecision{
			CanAccess:            false,
			Reason:               domain.ReasonAdvancedPremium,
			RequiresSubscription: true,
		}
	}

	return domain.AccessDecision{
		CanAccess: true,
		Reason:    domain.ReasonDefaultGrant,
	}
}

// ConsumesFreeSlot reports whether a granted access at the given index should
// be classified as consuming a free-tier slot in the usage log.
func ConsumesFreeSlot(testIndex int, settings domain.AccessSettings) bool {
	return testIndex < settings.FreeTestsCount
}
