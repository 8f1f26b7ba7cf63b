package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	RedisAddr          string
	SettingsChannel    string
	SettingsMirrorPath string
	DefaultLocale      string
	GeoIPDBPath        string
	GoogleClientID     string
	GoogleIssuer       string
	STCPayBaseURL      string
	STCPayMerchantID   string
	STCPaySandbox      bool
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	UsageQueueSize     int
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          getEnv("JWT_ISSUER", "colorspot"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "colorspot-clients"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		SettingsChannel:    getEnv("SETTINGS_CHANNEL", "colorspot:settings"),
		SettingsMirrorPath: getEnv("SETTINGS_MIRROR_PATH", "./data/mirror"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "ar"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleIssuer:       getEnv("GOOGLE_ISSUER", "https://accounts.google.com"),
		STCPayBaseURL:      getEnv("STCPAY_BASE_URL", "https://api.stcpay.com.sa"),
		STCPayMerchantID:   os.Getenv("STCPAY_MERCHANT_ID"),
		STCPaySandbox:      getEnvBool("STCPAY_SANDBOX", true),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		UsageQueueSize:     getEnvInt("USAGE_QUEUE_SIZE", 256),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
