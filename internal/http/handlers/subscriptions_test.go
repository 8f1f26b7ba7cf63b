package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/middleware"
	"colorspot-server/internal/providers/stcpay"
)

func seedUser(t *testing.T, env *testEnv, id string) {
	t.Helper()
	err := env.users.Create(context.Background(), &domain.User{
		ID:    id,
		Email: id + "@example.com",
		Role:  domain.UserRoleUser,
		Plan:  domain.UserPlanFree,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func authedRequest(method, target, body, userID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithIdentity(req.Context(), userID, "user", "free"))
}

func TestSubscriptionPurchaseFlow(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()
	seedUser(t, env, "user-1")

	rec := httptest.NewRecorder()
	env.app.StartSubscription(rec, authedRequest(http.MethodPost, "/subscriptions",
		`{"mobile_number":"0551234567"}`, "user-1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var started startSubscriptionResponse
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatalf("decode: %v", err)
	}

	confirmBody := fmt.Sprintf(`{"payment_ref":%q,"otp_reference":%q,"otp_code":"123456"}`,
		started.PaymentRef, started.OTPReference)
	rec = httptest.NewRecorder()
	env.app.ConfirmSubscription(rec, authedRequest(http.MethodPost, "/subscriptions/confirm",
		confirmBody, "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var confirmed confirmSubscriptionResponse
	if err := json.NewDecoder(rec.Body).Decode(&confirmed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if confirmed.Subscription.Status != string(domain.SubscriptionStatusActive) {
		t.Fatalf("expected active subscription, got %q", confirmed.Subscription.Status)
	}
	claims, err := middleware.VerifyJWT("test-secret", confirmed.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Plan != string(domain.UserPlanPremium) {
		t.Fatalf("expected premium token, got %q", claims.Plan)
	}

	user, err := env.users.GetByID(context.Background(), "user-1")
	if err != nil || user.Plan != domain.UserPlanPremium {
		t.Fatalf("expected upgraded plan, got %v %v", user, err)
	}

	rec = httptest.NewRecorder()
	env.app.CurrentSubscription(rec, authedRequest(http.MethodGet, "/subscriptions/current", "", "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("current: expected 200, got %d", rec.Code)
	}
}

func TestConfirmSubscriptionDeclined(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()
	seedUser(t, env, "user-2")

	// The sandbox declines mobile numbers ending in 0000.
	rec := httptest.NewRecorder()
	env.app.StartSubscription(rec, authedRequest(http.MethodPost, "/subscriptions",
		`{"mobile_number":"0550000000"}`, "user-2"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: %d", rec.Code)
	}
	var started startSubscriptionResponse
	json.NewDecoder(rec.Body).Decode(&started)

	confirmBody := fmt.Sprintf(`{"payment_ref":%q,"otp_reference":%q,"otp_code":"123456"}`,
		started.PaymentRef, started.OTPReference)
	rec = httptest.NewRecorder()
	env.app.ConfirmSubscription(rec, authedRequest(http.MethodPost, "/subscriptions/confirm",
		confirmBody, "user-2"))
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}

	user, _ := env.users.GetByID(context.Background(), "user-2")
	if user.Plan != domain.UserPlanFree {
		t.Fatal("declined payment must not upgrade the plan")
	}
}

func TestConfirmPaymentMapsGatewayErrors(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	err := env.app.confirmPayment(context.Background(), stcpay.ConfirmRequest{
		PaymentRef: "missing", OTPReference: "x", OTPCode: "123456",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown session: got %v, want domain.ErrNotFound", err)
	}

	session, err := env.app.Payments.Authorize(context.Background(), stcpay.PaymentRequest{
		AmountSAR: 30, MobileNumber: "0551234567",
	})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	err = env.app.confirmPayment(context.Background(), stcpay.ConfirmRequest{
		PaymentRef: session.PaymentRef, OTPReference: "wrong", OTPCode: "123456",
	})
	if !errors.Is(err, domain.ErrInvalidPayment) {
		t.Fatalf("wrong otp reference: got %v, want domain.ErrInvalidPayment", err)
	}

	declined, err := env.app.Payments.Authorize(context.Background(), stcpay.PaymentRequest{
		AmountSAR: 30, MobileNumber: "0550000000",
	})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	err = env.app.confirmPayment(context.Background(), stcpay.ConfirmRequest{
		PaymentRef: declined.PaymentRef, OTPReference: declined.OTPReference, OTPCode: "123456",
	})
	if !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("declined: got %v, want domain.ErrPaymentDeclined", err)
	}
}

func TestConfirmSubscriptionWrongUser(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()
	seedUser(t, env, "user-3")
	seedUser(t, env, "user-4")

	rec := httptest.NewRecorder()
	env.app.StartSubscription(rec, authedRequest(http.MethodPost, "/subscriptions",
		`{"mobile_number":"0551234567"}`, "user-3"))
	var started startSubscriptionResponse
	json.NewDecoder(rec.Body).Decode(&started)

	confirmBody := fmt.Sprintf(`{"payment_ref":%q,"otp_reference":%q,"otp_code":"123456"}`,
		started.PaymentRef, started.OTPReference)
	rec = httptest.NewRecorder()
	env.app.ConfirmSubscription(rec, authedRequest(http.MethodPost, "/subscriptions/confirm",
		confirmBody, "user-4"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
