// Package settings owns the AccessSettings lifecycle: the database is the
// authoritative store, an in-memory cache serves render-time reads
// synchronously, and a file mirror keeps the last known value across
// restarts. Every successful load or update is published on the bus.
package settings

import (
	"context"
	"encoding/json"
	"errors"

	gocache "github.com/patrickmn/go-cache"

	"colorspot-server/internal/bus"
	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
)

const (
	cacheKey  = "access_settings"
	mirrorKey = "access_settings.json"
)

// Mirror is the durable local cache behind Current. *storage.FileStore
// satisfies it.
type Mirror interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Service is the single owner of AccessSettings persistence. Handlers receive
// it by injection; there is no package-level mutable state.
type Service struct {
	repo      domain.SettingsRepository
	mirror    Mirror
	broadcast bus.Bus
	memory    *gocache.Cache
	logger    infra.Logger
}

// NewService wires the store. mirror may be nil (no durable local cache).
// The service's own bus subscription is the only path into the caches, so a
// locally published update and one arriving from another instance refresh
// them the same way, exactly once.
func NewService(repo domain.SettingsRepository, mirror Mirror, broadcast bus.Bus, logger infra.Logger) *Service {
	s := &Service{
		repo:      repo,
		mirror:    mirror,
		broadcast: broadcast,
		memory:    gocache.New(gocache.NoExpiration, 0),
		logger:    logger,
	}
	broadcast.Subscribe(func(updated domain.AccessSettings) {
		s.remember(context.Background(), updated)
	})
	return s
}

// Load refreshes from the database. On success the caches are updated and the
// new value is broadcast. On failure the previously cached value stays in
// effect and is returned alongside the error; callers log and carry on.
func (s *Service) Load(ctx context.Context) (domain.AccessSettings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// First run: the document does not exist yet. Seed it so
			// subsequent instances read the same defaults.
			defaults := domain.DefaultAccessSettings()
			if saveErr := s.repo.Save(ctx, defaults); saveErr != nil {
				s.logger.Warn().Err(saveErr).Msg("settings: seed defaults failed")
			}
			s.broadcast.Publish(ctx, defaults)
			return defaults.Clone(), nil
		}
		s.logger.Error().Err(err).Msg("settings: load failed, keeping cached value")
		return s.Current(), err
	}

	s.broadcast.Publish(ctx, *stored)
	return stored.Clone(), nil
}

// Current returns a usable settings value without ever failing: the
// in-memory cache first, then the file mirror, then hardcoded defaults.
// Malformed mirror content counts as a miss.
func (s *Service) Current() domain.AccessSettings {
	if v, ok := s.memory.Get(cacheKey); ok {
		if cached, ok := v.(domain.AccessSettings); ok {
			return cached.Clone()
		}
	}

	if s.mirror != nil {
		raw, err := s.mirror.Read(context.Background(), mirrorKey)
		if err == nil {
			var mirrored domain.AccessSettings
			if jsonErr := json.Unmarshal(raw, &mirrored); jsonErr == nil {
				mirrored.Normalize()
				s.memory.Set(cacheKey, mirrored.Clone(), gocache.NoExpiration)
				return mirrored
			}
			s.logger.Warn().Msg("settings: malformed mirror, using defaults")
		}
	}

	return domain.DefaultAccessSettings()
}

// Update persists to the database first; only on success is the bus touched.
// The in-process delivery runs the service's own subscription synchronously,
// so the caches reflect the new value before Update returns. Returns false on
// any persistence failure so the admin UI can show an explicit error, leaving
// the caches consistent with the (failed) remote state.
func (s *Service) Update(ctx context.Context, settings domain.AccessSettings) bool {
	settings.Normalize()
	if err := s.repo.Save(ctx, settings); err != nil {
		s.logger.Error().Err(err).Msg("settings: update failed")
		return false
	}
	s.broadcast.Publish(ctx, settings)
	return true
}

// Subscribe exposes the bus to components that re-evaluate on settings
// changes. Returns the unsubscribe function.
func (s *Service) Subscribe(fn bus.Listener) func() {
	return s.broadcast.Subscribe(fn)
}

// remember updates the in-memory cache and, best-effort, the file mirror.
func (s *Service) remember(ctx context.Context, settings domain.AccessSettings) {
	s.memory.Set(cacheKey, settings.Clone(), gocache.NoExpiration)

	if s.mirror == nil {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		s.logger.Error().Err(err).Msg("settings: encode mirror")
		return
	}
	if _, err := s.mirror.Write(ctx, mirrorKey, raw); err != nil {
		s.logger.Warn().Err(err).Msg("settings: write mirror failed")
	}
}
