package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/middleware"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleVerifyRequest struct {
	IDToken string `json:"id_token"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

type userProfileDTO struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
	Locale string `json:"locale"`
}

func newUserProfileDTO(user *domain.User) userProfileDTO {
	return userProfileDTO{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
		Plan:   string(user.Plan),
		Locale: user.Locale,
	}
}

// Register creates a local email/password account and signs the user in.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		a.error(w, http.StatusBadRequest, "bad_request", "valid email required")
		return
	}
	if len(req.Password) < 8 {
		a.error(w, http.StatusBadRequest, "bad_request", "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Locale:       middleware.LocaleFromContext(r.Context()),
		Role:         domain.UserRoleUser,
		Plan:         domain.UserPlanFree,
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			a.error(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		a.Logger.Error().Err(err).Msg("create user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}
	a.respondWithToken(w, user, http.StatusCreated)
}

// Login authenticates a local account.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := a.Users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		a.Logger.Error().Err(err).Msg("lookup user failed")
		a.error(w, http.StatusInternalServerError, "internal", "login failed")
		return
	}
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}
	a.respondWithToken(w, user, http.StatusOK)
}

// AuthGoogleVerify exchanges a Google ID token for a session token, creating
// the account on first sign-in.
func (a *App) AuthGoogleVerify(w http.ResponseWriter, r *http.Request) {
	var req googleVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.IDToken == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id_token required")
		return
	}
	if a.GoogleVerifier == nil {
		a.error(w, http.StatusNotImplemented, "unavailable", "google sign-in is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	claims, err := a.GoogleVerifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		a.Logger.Error().Err(err).Msg("google verify failed")
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid google token")
		return
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	locale, _ := claims["locale"].(string)
	if locale != "ar" && locale != "en" {
		locale = middleware.LocaleFromContext(r.Context())
	}
	user, err := a.Users.UpsertByGoogleSub(r.Context(), &domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(email),
		Name:      name,
		GoogleSub: sub,
		Locale:    locale,
		Role:      domain.UserRoleUser,
		Plan:      domain.UserPlanFree,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("upsert google user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist user")
		return
	}
	a.respondWithToken(w, user, http.StatusOK)
}

// Me returns the authenticated user's profile.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	a.json(w, http.StatusOK, newUserProfileDTO(user))
}

func (a *App) respondWithToken(w http.ResponseWriter, user *domain.User, status int) {
	token, err := a.signToken(user)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, status, authResponse{Token: token, User: newUserProfileDTO(user)})
}

func (a *App) signToken(user *domain.User) (string, error) {
	return middleware.SignJWT(a.JWTSecret, middleware.TokenClaims{
		Sub:      user.ID,
		Role:     string(user.Role),
		Plan:     string(user.Plan),
		Locale:   user.Locale,
		Exp:      time.Now().Add(24 * time.Hour).Unix(),
		Issuer:   a.Cfg.JWTIssuer,
		Audience: a.Cfg.JWTAudience,
	})
}
