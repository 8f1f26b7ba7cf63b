package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
	"colorspot-server/internal/sqlinline"
)

// SubscriptionRepositoryPG implements domain.SubscriptionRepository backed by PostgreSQL.
type SubscriptionRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSubscriptionRepository(sql infra.SQLExecutor) *SubscriptionRepositoryPG {
	return &SubscriptionRepositoryPG{sql: sql}
}

func (r *SubscriptionRepositoryPG) Create(ctx context.Context, sub *domain.Subscription) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertSubscription,
		sub.ID,
		sub.UserID,
		sub.Plan,
		sub.Status,
		sub.PaymentRef,
		sub.AmountSAR,
	)
	if err != nil {
		return fmt.Errorf("subscriptions: create: %w", err)
	}
	return nil
}

func (r *SubscriptionRepositoryPG) GetByPaymentRef(ctx context.Context, ref string) (*domain.Subscription, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectSubscriptionByPaymentRef, ref)
	return scanSubscription(row)
}

// Activate marks a pending subscription active for the given window.
func (r *SubscriptionRepositoryPG) Activate(ctx context.Context, id string, startsAt, expiresAt time.Time) (*domain.Subscription, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QActivateSubscription, id, startsAt, expiresAt)
	return scanSubscription(row)
}

// GetActiveByUserID returns the newest unexpired active subscription, or
// domain.ErrNotFound when the user has none.
func (r *SubscriptionRepositoryPG) GetActiveByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectActiveSubscription, userID)
	return scanSubscription(row)
}

// ExpireLapsed flips active subscriptions whose expiry has passed and
// downgrades users left without an active subscription. Returns the number
// of subscriptions expired.
func (r *SubscriptionRepositoryPG) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QExpireLapsedSubscriptions, now)
	if err != nil {
		return 0, fmt.Errorf("subscriptions: expire lapsed: %w", err)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QDowngradeExpiredUsers); err != nil {
		return tag.RowsAffected(), fmt.Errorf("subscriptions: downgrade users: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	if err := row.Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.PaymentRef, &s.AmountSAR, &s.StartsAt, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

var _ domain.SubscriptionRepository = (*SubscriptionRepositoryPG)(nil)
