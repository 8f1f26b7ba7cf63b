package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
	"colorspot-server/internal/sqlinline"
)

// SettingsRepositoryPG stores the singleton AccessSettings document as a
// jsonb column keyed by a fixed row id. Last write wins; there is no version
// check, concurrent admin edits are an accepted race.
type SettingsRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSettingsRepository(sql infra.SQLExecutor) *SettingsRepositoryPG {
	return &SettingsRepositoryPG{sql: sql}
}

// Get fetches the settings document. A missing row maps to domain.ErrNotFound
// so the caller can fall back to defaults.
func (r *SettingsRepositoryPG) Get(ctx context.Context) (*domain.AccessSettings, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectAccessSettings)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("settings: get: %w", err)
	}
	var settings domain.AccessSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("settings: decode document: %w", err)
	}
	settings.Normalize()
	return &settings, nil
}

// Save overwrites the settings document.
func (r *SettingsRepositoryPG) Save(ctx context.Context, settings domain.AccessSettings) error {
	settings.Normalize()
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("settings: encode document: %w", err)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QUpsertAccessSettings, raw); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

var _ domain.SettingsRepository = (*SettingsRepositoryPG)(nil)
