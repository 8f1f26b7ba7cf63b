// Package handlers contains the HTTP endpoints. All dependencies are
// injected through the App container; handlers hold no package-level state.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"colorspot-server/internal/catalog"
	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
	"colorspot-server/internal/providers/stcpay"
	"colorspot-server/internal/settings"
	"colorspot-server/internal/usage"
)

// GoogleVerifier validates a Google ID token and returns its claims.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (map[string]any, error)
}

// App bundles the handler dependencies.
type App struct {
	Cfg            *infra.Config
	Logger         infra.Logger
	Settings       *settings.Service
	Catalog        *catalog.Catalog
	Users          domain.UserRepository
	Subscriptions  domain.SubscriptionRepository
	Usage          domain.UsageRepository
	Recorder       *usage.Recorder
	Payments       *stcpay.Client
	GoogleVerifier GoogleVerifier
	JWTSecret      string
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}
