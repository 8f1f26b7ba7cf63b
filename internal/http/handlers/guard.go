package handlers

import (
	"net/http"

	"colorspot-server/internal/access"
	"colorspot-server/internal/domain"
	"colorspot-server/internal/middleware"
)

// gateResponse is the envelope returned for every guarded test view. Exactly
// one state is active; Test is populated only for the content state.
type gateResponse struct {
	State                domain.GateState `json:"state"`
	Reason               string           `json:"reason,omitempty"`
	Message              string           `json:"message,omitempty"`
	RequiresSubscription bool             `json:"requires_subscription,omitempty"`
	Test                 *testDetailDTO   `json:"test,omitempty"`
}

var gateMessages = map[domain.GateState]domain.LocalizedText{
	domain.GateLoginPrompt: {
		En: "Sign in to view this test.",
		Ar: "سجّل الدخول لعرض هذا الاختبار.",
	},
	domain.GateSubscriptionUpsell: {
		En: "This test requires a premium subscription.",
		Ar: "هذا الاختبار يتطلب اشتراكًا مميزًا.",
	},
	domain.GateGenericDenied: {
		En: "This test is not available.",
		Ar: "هذا الاختبار غير متاح.",
	},
}

// gate classifies a request for the given test into one of the four render
// states. Three gates run in order: the authentication gate (anonymous
// visitors are prompted to sign in before the evaluator is consulted, unless
// global free access is on), the evaluator gate, and a residual gate for any
// other denial. A grant also records usage; recording is fire-and-forget and
// never affects the response.
func (a *App) gate(r *http.Request, test domain.ReagentTest) gateResponse {
	settings := a.Settings.Current()
	userID := middleware.UserIDFromContext(r.Context())
	paid := middleware.PlanFromContext(r.Context()) == string(domain.UserPlanPremium)
	locale := middleware.LocaleFromContext(r.Context())

	if userID == "" && !settings.GlobalFreeAccess {
		return gateResponse{
			State:   domain.GateLoginPrompt,
			Message: gateMessages[domain.GateLoginPrompt].In(locale),
		}
	}

	decision := access.Evaluate(test.Index(), paid, settings)
	if decision.CanAccess {
		if a.Recorder != nil {
			a.Recorder.Record(userID, test, access.ConsumesFreeSlot(test.Index(), settings))
		}
		dto := newTestDetailDTO(test, locale)
		return gateResponse{
			State:  domain.GateContent,
			Reason: decision.Reason,
			Test:   &dto,
		}
	}

	state := domain.GateGenericDenied
	if decision.RequiresSubscription {
		state = domain.GateSubscriptionUpsell
	}
	return gateResponse{
		State:                state,
		Reason:               decision.Reason,
		Message:              gateMessages[state].In(locale),
		RequiresSubscription: decision.RequiresSubscription,
	}
}

func gateStatus(state domain.GateState) int {
	switch state {
	case domain.GateContent:
		return http.StatusOK
	case domain.GateLoginPrompt:
		return http.StatusUnauthorized
	case domain.GateSubscriptionUpsell:
		return http.StatusPaymentRequired
	default:
		return http.StatusForbidden
	}
}
