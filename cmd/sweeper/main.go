// Command sweeper downgrades lapsed subscriptions. It marks active
// subscriptions past their expiry as expired and returns their users to the
// free plan, looping on an interval until terminated.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"colorspot-server/internal/adapter/repo"
	"colorspot-server/internal/infra"
)

const defaultSweepInterval = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "sweeper").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: db connection failed")
	}
	defer pool.Close()

	subs := repo.NewSubscriptionRepository(infra.NewSQLRunner(pool, logger))

	interval := defaultSweepInterval
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	logger.Info().Dur("interval", interval).Msg("sweeper: started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, subs, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("sweeper: stopped")
			return
		case <-ticker.C:
			sweep(ctx, subs, logger)
		}
	}
}

func sweep(ctx context.Context, subs *repo.SubscriptionRepositoryPG, logger infra.Logger) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	affected, err := subs.ExpireLapsed(sweepCtx, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("sweeper: expire pass failed")
		}
		return
	}
	if affected > 0 {
		logger.Info().Int64("expired", affected).Msg("sweeper: downgraded lapsed subscriptions")
	}
}
