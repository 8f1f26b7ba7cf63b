package domain

import (
	"context"
	"time"
)

// SettingsRepository persists the singleton AccessSettings document.
type SettingsRepository interface {
	Get(ctx context.Context) (*AccessSettings, error)
	Save(ctx context.Context, settings AccessSettings) error
}

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpsertByGoogleSub(ctx context.Context, user *User) (*User, error)
	SetPlan(ctx context.Context, userID string, plan UserPlan) error
}

// SubscriptionRepository handles persistence for subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByPaymentRef(ctx context.Context, ref string) (*Subscription, error)
	Activate(ctx context.Context, id string, startsAt, expiresAt time.Time) (*Subscription, error)
	GetActiveByUserID(ctx context.Context, userID string) (*Subscription, error)
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}

// UsageRepository appends and reads usage records.
type UsageRepository interface {
	Insert(ctx context.Context, rec *UsageRecord) error
	ListRecent(ctx context.Context, limit int) ([]UsageRecord, error)
	Summary(ctx context.Context) (*UsageSummary, error)
}
