package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"colorspot-server/internal/domain"
)

// TokenClaims is the payload of the HS256 session token issued at login.
type TokenClaims struct {
	Sub      string `json:"sub"`
	Role     string `json:"role"`
	Plan     string `json:"plan"`
	Locale   string `json:"locale"`
	Exp      int64  `json:"exp"`
	Issuer   string `json:"iss"`
	Audience string `json:"aud"`
}

type userKey string

const (
	userIDKey   userKey = "user_id"
	userRoleKey userKey = "user_role"
	userPlanKey userKey = "user_plan"
)

func SignJWT(secret string, claims TokenClaims) (string, error) {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, _ := json.Marshal(header)
	payloadJSON, _ := json.Marshal(claims)
	headerEnc := base64.RawURLEncoding.EncodeToString(headerJSON)
	payloadEnc := base64.RawURLEncoding.EncodeToString(payloadJSON)
	data := headerEnc + "." + payloadEnc
	sig := hmacSign(secret, data)
	return data + "." + sig, nil
}

func hmacSign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyJWT parses and validates a session token. All failures wrap
// domain.ErrUnauthorized so callers can classify without string matching.
func VerifyJWT(secret, token string) (*TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: malformed token", domain.ErrUnauthorized)
	}
	expected := hmacSign(secret, parts[0]+"."+parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, fmt.Errorf("%w: invalid signature", domain.ErrUnauthorized)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad payload encoding", domain.ErrUnauthorized)
	}
	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: bad payload", domain.ErrUnauthorized)
	}
	if claims.Exp != 0 && time.Now().Unix() > claims.Exp {
		return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
	}
	return &claims, nil
}

// AuthJWT rejects requests without a valid bearer token.
func AuthJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := claimsFromRequest(secret, r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches the user identity when a valid bearer token is
// present but lets anonymous requests through. The access guard needs to see
// anonymous users to produce the login-prompt state instead of a bare 401.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := claimsFromRequest(secret, r); err == nil {
				r = r.WithContext(contextWithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards admin endpoints. It must run after AuthJWT.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != "admin" {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFromRequest(secret string, r *http.Request) (*TokenClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("%w: missing authorization", domain.ErrUnauthorized)
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fmt.Errorf("%w: invalid authorization", domain.ErrUnauthorized)
	}
	return VerifyJWT(secret, parts[1])
}

func contextWithClaims(ctx context.Context, claims *TokenClaims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.Sub)
	ctx = context.WithValue(ctx, userRoleKey, claims.Role)
	ctx = context.WithValue(ctx, userPlanKey, claims.Plan)
	if claims.Locale != "" {
		ctx = context.WithValue(ctx, LocaleKey, claims.Locale)
	}
	return ctx
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userRoleKey).(string); ok {
		return v
	}
	return ""
}

func PlanFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userPlanKey).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects an identity directly, bypassing token verification.
// Command-line tools and tests use it; HTTP traffic goes through AuthJWT or
// OptionalAuth.
func WithIdentity(ctx context.Context, userID, role, plan string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userRoleKey, role)
	return context.WithValue(ctx, userPlanKey, plan)
}
