package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"colorspot-server/internal/http/handlers"
	"colorspot-server/internal/infra/geoip"
	"colorspot-server/internal/middleware"
)

// NewRouter mounts the API. The test routes run behind OptionalAuth so the
// access guard can distinguish anonymous visitors from signed-in users;
// everything under /admin requires an admin token.
func NewRouter(app *handlers.App, resolver geoip.CountryResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute),
		middleware.Locale(resolver, app.Cfg.DefaultLocale, app.Logger),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.Register)
			r.Post("/login", app.Login)
			r.Post("/google/verify", app.AuthGoogleVerify)
			r.With(middleware.AuthJWT(app.JWTSecret)).Get("/me", app.Me)
		})

		r.Route("/tests", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(app.JWTSecret))
			r.Get("/", app.ListTests)
			r.Get("/{position}", app.GetTest)
			r.Post("/{position}/interpret", app.InterpretTest)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(middleware.AuthJWT(app.JWTSecret))
			r.Post("/", app.StartSubscription)
			r.Post("/confirm", app.ConfirmSubscription)
			r.Get("/current", app.CurrentSubscription)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AuthJWT(app.JWTSecret), middleware.RequireAdmin)
			r.Get("/settings", app.GetAccessSettings)
			r.Put("/settings", app.UpdateAccessSettings)
			r.Get("/usage", app.ListUsage)
			r.Get("/usage/summary", app.UsageSummary)
			r.Get("/usage/export", app.ExportUsage)
		})
	})

	return r
}
