package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"colorspot-server/internal/middleware"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	rec := httptest.NewRecorder()
	body := `{"email":"sara@example.com","password":"correct-horse","name":"Sara"}`
	env.app.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created authResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Token == "" || created.User.Plan != "free" {
		t.Fatalf("unexpected register response: %+v", created)
	}
	claims, err := middleware.VerifyJWT("test-secret", created.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Sub != created.User.ID {
		t.Fatal("token subject mismatch")
	}

	rec = httptest.NewRecorder()
	env.app.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"sara@example.com","password":"correct-horse"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.app.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"sara@example.com","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	body := `{"email":"dup@example.com","password":"long-enough"}`
	rec := httptest.NewRecorder()
	env.app.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	env.app.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	rec := httptest.NewRecorder()
	env.app.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"a@b.sa","password":"short"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMeRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	defer env.app.Recorder.Close()

	rec := httptest.NewRecorder()
	env.app.Me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
