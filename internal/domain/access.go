package domain

// AccessDecision is the outcome of evaluating a single test position against
// the current AccessSettings. It is ephemeral and carries no identity of the
// user it was computed for.
type AccessDecision struct {
	CanAccess            bool   `json:"can_access"`
	Reason               string `json:"reason"`
	RequiresSubscription bool   `json:"requires_subscription,omitempty"`
}

// Decision reasons. These double as message keys for localization at the HTTP
// edge.
const (
	ReasonGlobalFreeAccess = "global free access enabled"
	ReasonTestAccessible   = "test is accessible"
	ReasonSpecificPremium  = "premium subscription required for this specific test"
	ReasonAdvancedPremium  = "premium subscription required for advanced tests"
	ReasonDefaultGrant     = "access granted"
)

// GateState names the mutually exclusive render states the access guard can
// produce for a protected test.
type GateState string

const (
	GateContent            GateState = "content"
	GateLoginPrompt        GateState = "login-prompt"
	GateSubscriptionUpsell GateState = "subscription-upsell"
	GateGenericDenied      GateState = "generic-denied"
)
