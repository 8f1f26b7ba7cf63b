package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/middleware"
	"colorspot-server/internal/providers/stcpay"
)

// Premium pricing, flat monthly.
const (
	premiumPriceSAR      = 30
	subscriptionDuration = 30 * 24 * time.Hour
)

type startSubscriptionRequest struct {
	MobileNumber string `json:"mobile_number"`
}

type startSubscriptionResponse struct {
	PaymentRef   string    `json:"payment_ref"`
	OTPReference string    `json:"otp_reference"`
	AmountSAR    int64     `json:"amount_sar"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type confirmSubscriptionRequest struct {
	PaymentRef   string `json:"payment_ref"`
	OTPReference string `json:"otp_reference"`
	OTPCode      string `json:"otp_code"`
}

type subscriptionDTO struct {
	ID        string     `json:"id"`
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	AmountSAR int64      `json:"amount_sar"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type confirmSubscriptionResponse struct {
	Subscription subscriptionDTO `json:"subscription"`
	Token        string          `json:"token"`
}

func newSubscriptionDTO(sub *domain.Subscription) subscriptionDTO {
	return subscriptionDTO{
		ID:        sub.ID,
		Plan:      string(sub.Plan),
		Status:    string(sub.Status),
		AmountSAR: sub.AmountSAR,
		StartsAt:  sub.StartsAt,
		ExpiresAt: sub.ExpiresAt,
	}
}

// StartSubscription authorizes an STC Pay payment and records a pending
// subscription keyed by the gateway's payment reference.
func (a *App) StartSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	var req startSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.MobileNumber) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "mobile_number required")
		return
	}

	session, err := a.Payments.Authorize(r.Context(), stcpay.PaymentRequest{
		AmountSAR:    premiumPriceSAR,
		MobileNumber: req.MobileNumber,
		Description:  "colorspot premium subscription",
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("payment authorize failed")
		a.error(w, http.StatusBadGateway, "payment_failed", "could not start payment")
		return
	}

	sub := &domain.Subscription{
		ID:         uuid.NewString(),
		UserID:     userID,
		Plan:       domain.UserPlanPremium,
		Status:     domain.SubscriptionStatusPending,
		PaymentRef: session.PaymentRef,
		AmountSAR:  premiumPriceSAR,
	}
	if err := a.Subscriptions.Create(r.Context(), sub); err != nil {
		a.Logger.Error().Err(err).Msg("create subscription failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not record subscription")
		return
	}

	a.json(w, http.StatusCreated, startSubscriptionResponse{
		PaymentRef:   session.PaymentRef,
		OTPReference: session.OTPReference,
		AmountSAR:    premiumPriceSAR,
		ExpiresAt:    session.ExpiresAt,
	})
}

// ConfirmSubscription completes the payment with the customer OTP, activates
// the subscription, upgrades the plan, and returns a fresh session token that
// carries the premium plan.
func (a *App) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	var req confirmSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	sub, err := a.Subscriptions.GetByPaymentRef(r.Context(), req.PaymentRef)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown payment reference")
		return
	}
	if sub.UserID != userID {
		a.error(w, http.StatusForbidden, "forbidden", "payment belongs to another account")
		return
	}
	if sub.Status != domain.SubscriptionStatusPending {
		a.error(w, http.StatusConflict, "conflict", "subscription is not pending")
		return
	}

	err = a.confirmPayment(r.Context(), stcpay.ConfirmRequest{
		PaymentRef:   req.PaymentRef,
		OTPReference: req.OTPReference,
		OTPCode:      req.OTPCode,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidPayment):
		a.error(w, http.StatusBadRequest, "invalid_otp", "otp did not match")
		return
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "payment session expired")
		return
	case errors.Is(err, domain.ErrPaymentDeclined):
		a.error(w, http.StatusPaymentRequired, "payment_declined", "payment was declined")
		return
	default:
		a.Logger.Error().Err(err).Msg("payment confirm failed")
		a.error(w, http.StatusBadGateway, "payment_failed", "could not confirm payment")
		return
	}

	now := time.Now().UTC()
	activated, err := a.Subscriptions.Activate(r.Context(), sub.ID, now, now.Add(subscriptionDuration))
	if err != nil {
		a.Logger.Error().Err(err).Msg("activate subscription failed")
		a.error(w, http.StatusInternalServerError, "internal", "payment captured but activation failed")
		return
	}
	if err := a.Users.SetPlan(r.Context(), userID, domain.UserPlanPremium); err != nil {
		a.Logger.Error().Err(err).Msg("upgrade plan failed")
	}

	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "could not reload user")
		return
	}
	token, err := a.signToken(user)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusOK, confirmSubscriptionResponse{
		Subscription: newSubscriptionDTO(activated),
		Token:        token,
	})
}

// confirmPayment runs the gateway confirmation and translates gateway
// sentinels into domain errors at the boundary, so the handler above speaks
// only domain vocabulary.
func (a *App) confirmPayment(ctx context.Context, req stcpay.ConfirmRequest) error {
	err := a.Payments.Confirm(ctx, req)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stcpay.ErrInvalidOTP):
		return fmt.Errorf("%w: otp mismatch", domain.ErrInvalidPayment)
	case errors.Is(err, stcpay.ErrSessionNotFound):
		return fmt.Errorf("%w: payment session", domain.ErrNotFound)
	case errors.Is(err, stcpay.ErrDeclined):
		return domain.ErrPaymentDeclined
	default:
		return err
	}
}

// CurrentSubscription returns the caller's active subscription, if any.
func (a *App) CurrentSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	sub, err := a.Subscriptions.GetActiveByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "no active subscription")
			return
		}
		a.Logger.Error().Err(err).Msg("lookup subscription failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load subscription")
		return
	}
	a.json(w, http.StatusOK, newSubscriptionDTO(sub))
}
