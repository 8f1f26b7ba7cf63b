package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"colorspot-server/internal/domain"
)

func decodeGate(t *testing.T, rec *httptest.ResponseRecorder) gateResponse {
	t.Helper()
	var resp gateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode gate response: %v", err)
	}
	return resp
}

func waitForUsage(t *testing.T, repo *fakeUsageRepo, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.count() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("usage records: want %d, have %d", want, repo.count())
}

func TestGetTestFreeTierContent(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	rec := httptest.NewRecorder()
	env.app.GetTest(rec, requestForTest("1", "user-1", "free"))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeGate(t, rec)
	if resp.State != domain.GateContent {
		t.Fatalf("expected content state, got %q", resp.State)
	}
	if resp.Test == nil || resp.Test.Position != 1 {
		t.Fatal("expected test payload")
	}
	waitForUsage(t, env.usageRepo, 1)
}

func TestGetTestAnonymousIsLoginPrompt(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	// Anonymous visitors hit the authentication gate before the evaluator,
	// even inside the free range.
	for _, position := range []string{"1", "10"} {
		rec := httptest.NewRecorder()
		env.app.GetTest(rec, requestForTest(position, "", ""))

		if rec.Code != 401 {
			t.Fatalf("position %s: expected 401, got %d", position, rec.Code)
		}
		resp := decodeGate(t, rec)
		if resp.State != domain.GateLoginPrompt {
			t.Fatalf("position %s: expected login-prompt, got %q", position, resp.State)
		}
		if resp.Test != nil {
			t.Fatal("denied state must not leak test content")
		}
		if resp.Message == "" {
			t.Fatal("expected localized message")
		}
	}
}

func TestGetTestFreeUserPremiumIsUpsell(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	rec := httptest.NewRecorder()
	env.app.GetTest(rec, requestForTest("10", "user-1", "free"))

	if rec.Code != 402 {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	resp := decodeGate(t, rec)
	if resp.State != domain.GateSubscriptionUpsell {
		t.Fatalf("expected subscription-upsell, got %q", resp.State)
	}
	if !resp.RequiresSubscription {
		t.Fatal("expected requires_subscription")
	}
}

func TestGetTestPremiumUserGetsContent(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	rec := httptest.NewRecorder()
	env.app.GetTest(rec, requestForTest("10", "user-1", "premium"))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeGate(t, rec); resp.State != domain.GateContent {
		t.Fatalf("expected content, got %q", resp.State)
	}
}

func TestGetTestSpecificPremiumInsideFreeRange(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	custom := domain.DefaultAccessSettings()
	custom.SpecificPremiumTests = []int{2}
	if !env.app.Settings.Update(context.Background(), custom) {
		t.Fatal("seed settings")
	}

	rec := httptest.NewRecorder()
	env.app.GetTest(rec, requestForTest("2", "user-1", "free"))
	if resp := decodeGate(t, rec); resp.State != domain.GateSubscriptionUpsell {
		t.Fatalf("expected subscription-upsell, got %q", resp.State)
	}

	// The neighbors stay free.
	rec = httptest.NewRecorder()
	env.app.GetTest(rec, requestForTest("1", "user-1", "free"))
	if resp := decodeGate(t, rec); resp.State != domain.GateContent {
		t.Fatalf("expected content for position 1, got %q", resp.State)
	}
}

func TestGetTestGlobalFreeAccessOpensEverything(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	custom := domain.DefaultAccessSettings()
	custom.GlobalFreeAccess = true
	if !env.app.Settings.Update(context.Background(), custom) {
		t.Fatal("seed settings")
	}

	// Global free access also bypasses the authentication gate.
	rec := httptest.NewRecorder()
	env.app.GetTest(rec, requestForTest("10", "", ""))
	resp := decodeGate(t, rec)
	if resp.State != domain.GateContent {
		t.Fatalf("expected content, got %q", resp.State)
	}
	if resp.Reason != domain.ReasonGlobalFreeAccess {
		t.Fatalf("unexpected reason %q", resp.Reason)
	}
}

func TestGetTestUnknownPosition(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	rec := httptest.NewRecorder()
	env.app.GetTest(rec, requestForTest("99", "", ""))
	if rec.Code != 404 {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeniedAccessRecordsNoUsage(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.app.GetTest(rec, requestForTest("10", "user-1", "free"))
	if rec.Code != 402 {
		t.Fatalf("expected denial, got %d", rec.Code)
	}
	env.app.Recorder.Close()
	if env.usageRepo.count() != 0 {
		t.Fatalf("expected no usage records, got %d", env.usageRepo.count())
	}
}

func TestArabicLocaleMessages(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	req := requestForTest("10", "", "")
	req = req.WithContext(contextWithLocale(req.Context(), "ar"))
	rec := httptest.NewRecorder()
	env.app.GetTest(rec, req)

	resp := decodeGate(t, rec)
	if resp.Message != gateMessages[domain.GateLoginPrompt].Ar {
		t.Fatalf("expected arabic message, got %q", resp.Message)
	}
}
