package domain

import "time"

// SubscriptionStatus captures the lifecycle of a paid subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusPending  SubscriptionStatus = "pending"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription tracks a user's paid tier. A pending subscription holds the
// payment reference until the gateway confirms; only an active, unexpired
// subscription grants premium access.
type Subscription struct {
	ID         string
	UserID     string
	Plan       UserPlan
	Status     SubscriptionStatus
	PaymentRef string
	AmountSAR  int64
	StartsAt   *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive reports whether the subscription grants premium access at the
// given instant.
func (s Subscription) IsActive(now time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return false
	}
	return true
}
