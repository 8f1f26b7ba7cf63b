package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"colorspot-server/internal/infra/geoip"
)

// LocaleKey carries the resolved locale ("ar" or "en") in the request context.
const LocaleKey contextKey = "locale"

var localeMatcher = language.NewMatcher([]language.Tag{
	language.Arabic, // first tag wins ties, Arabic is the primary audience
	language.English,
})

// Countries where Arabic is an official language. Visitors from these
// countries get Arabic when the request carries no locale preference.
var arabicCountries = map[string]struct{}{
	"SA": {}, "AE": {}, "KW": {}, "QA": {}, "BH": {}, "OM": {},
	"EG": {}, "JO": {}, "LB": {}, "SY": {}, "IQ": {}, "YE": {},
	"PS": {}, "SD": {}, "LY": {}, "TN": {}, "DZ": {}, "MA": {},
	"MR": {}, "SO": {}, "DJ": {}, "KM": {},
}

// Locale resolves the request locale in priority order: the X-Locale header,
// the Accept-Language header, the GeoIP country of the client IP, and finally
// the configured default. The resolver may be nil when no GeoIP database is
// configured.
func Locale(resolver geoip.CountryResolver, defaultLocale string, logger zerolog.Logger) func(http.Handler) http.Handler {
	if defaultLocale == "" {
		defaultLocale = "ar"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := resolveLocale(resolver, defaultLocale, r, logger)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLocale(resolver geoip.CountryResolver, defaultLocale string, r *http.Request, logger zerolog.Logger) string {
	if locale := normalizeLocale(r.Header.Get("X-Locale")); locale != "" {
		return locale
	}
	if locale := localeFromAcceptLanguage(r.Header.Get("Accept-Language")); locale != "" {
		return locale
	}
	if resolver != nil {
		code, err := resolver.CountryCode(ClientIP(r))
		if err != nil {
			logger.Debug().Err(err).Msg("geoip lookup failed")
		} else if code != "" {
			if _, ok := arabicCountries[strings.ToUpper(code)]; ok {
				return "ar"
			}
			return "en"
		}
	}
	return defaultLocale
}

func localeFromAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	tag, _, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	base, _ := tag.Base()
	if base.String() == "ar" {
		return "ar"
	}
	return "en"
}

func normalizeLocale(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ar":
		return "ar"
	case "en":
		return "en"
	default:
		return ""
	}
}

// LocaleFromContext returns the resolved locale, defaulting to Arabic.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "ar"
}

// ClientIP extracts the originating client IP, preferring X-Forwarded-For.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
