package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"colorspot-server/internal/adapter/repo"
	"colorspot-server/internal/bus"
	"colorspot-server/internal/catalog"
	"colorspot-server/internal/http/handlers"
	"colorspot-server/internal/http/httpapi"
	"colorspot-server/internal/infra"
	"colorspot-server/internal/infra/credentials"
	"colorspot-server/internal/infra/geoip"
	"colorspot-server/internal/infra/google"
	"colorspot-server/internal/providers/stcpay"
	"colorspot-server/internal/settings"
	"colorspot-server/internal/storage"
	"colorspot-server/internal/usage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	cat, err := catalog.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load test catalog")
	}

	// Settings bus: local only, or fronted by Redis when configured.
	local := bus.NewLocal()
	var settingsBus bus.Bus = local
	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if rdb != nil {
		redisBus := bus.NewRedis(local, rdb, cfg.SettingsChannel, logger)
		if err := redisBus.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start settings channel")
		}
		settingsBus = redisBus
		logger.Info().Str("channel", cfg.SettingsChannel).Msg("settings channel connected")
	}
	defer func() {
		if err := settingsBus.Close(); err != nil {
			logger.Warn().Err(err).Msg("settings bus close failed")
		}
	}()

	var mirror settings.Mirror
	if store, err := storage.NewFileStore(cfg.SettingsMirrorPath); err != nil {
		logger.Warn().Err(err).Msg("settings mirror unavailable, continuing without it")
	} else {
		mirror = store
	}

	settingsSvc := settings.NewService(repo.NewSettingsRepository(runner), mirror, settingsBus, logger)
	if _, err := settingsSvc.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial settings load failed, serving cached value")
	}

	recorder := usage.NewRecorder(repo.NewUsageRepository(runner), cfg.UsageQueueSize, logger)
	defer recorder.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, locale falls back to headers")
		resolver = nil
	}

	var verifier handlers.GoogleVerifier
	if cfg.GoogleClientID != "" {
		verifier = google.NewVerifier(cfg.GoogleIssuer, cfg.GoogleClientID)
	}

	merchantKey := strings.TrimSpace(os.Getenv("STCPAY_MERCHANT_KEY"))
	if merchantKey == "" && !cfg.STCPaySandbox {
		key, err := credentials.NewStore(runner).STCPayMerchantKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load stcpay merchant key from store")
		} else {
			merchantKey = key
		}
	}
	payments := stcpay.NewClient(stcpay.Options{
		MerchantID:  cfg.STCPayMerchantID,
		MerchantKey: merchantKey,
		BaseURL:     cfg.STCPayBaseURL,
		Sandbox:     cfg.STCPaySandbox,
		Logger:      &logger,
	})
	if payments.Sandbox() {
		logger.Info().Msg("stcpay running in sandbox mode")
	}

	app := &handlers.App{
		Cfg:            cfg,
		Logger:         logger,
		Settings:       settingsSvc,
		Catalog:        cat,
		Users:          repo.NewUserRepository(runner),
		Subscriptions:  repo.NewSubscriptionRepository(runner),
		Usage:          repo.NewUsageRepository(runner),
		Recorder:       recorder,
		Payments:       payments,
		GoogleVerifier: verifier,
		JWTSecret:      cfg.JWTSecret,
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, resolver))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
