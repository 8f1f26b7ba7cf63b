package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"colorspot-server/internal/domain"
	zippkg "colorspot-server/pkg/zip"
)

// GetAccessSettings returns the authoritative settings, refreshing from the
// database. A database failure still answers with the cached value so the
// dashboard stays usable; the stale flag tells the admin what they see.
func (a *App) GetAccessSettings(w http.ResponseWriter, r *http.Request) {
	current, err := a.Settings.Load(r.Context())
	stale := err != nil
	a.json(w, http.StatusOK, map[string]any{
		"settings": current,
		"stale":    stale,
	})
}

// UpdateAccessSettings replaces the settings document. The write is
// last-write-wins at the document level; concurrent admin edits are not
// merged. Persistence failure leaves every cache untouched and reports an
// explicit error.
func (a *App) UpdateAccessSettings(w http.ResponseWriter, r *http.Request) {
	var incoming domain.AccessSettings
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if !a.Settings.Update(r.Context(), incoming) {
		a.error(w, http.StatusBadGateway, "settings_update_failed", "could not persist settings")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"settings": a.Settings.Current()})
}

// ListUsage returns the most recent usage records.
func (a *App) ListUsage(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	records, err := a.Usage.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list usage failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load usage")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"records": records})
}

// UsageSummary returns aggregate usage counters for the dashboard.
func (a *App) UsageSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Usage.Summary(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("usage summary failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load summary")
		return
	}
	a.json(w, http.StatusOK, summary)
}

// ExportUsage streams a zip archive with the recent records and the summary
// as JSON documents.
func (a *App) ExportUsage(w http.ResponseWriter, r *http.Request) {
	records, err := a.Usage.ListRecent(r.Context(), 500)
	if err != nil {
		a.Logger.Error().Err(err).Msg("export usage failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load usage")
		return
	}
	summary, err := a.Usage.Summary(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("export summary failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load summary")
		return
	}

	recordsJSON, _ := json.MarshalIndent(records, "", "  ")
	summaryJSON, _ := json.MarshalIndent(summary, "", "  ")
	archive := zippkg.ArchiveAssets([]zippkg.Asset{
		{Filename: "usage_records.json", MIME: "application/json", Data: recordsJSON},
		{Filename: "usage_summary.json", MIME: "application/json", Data: summaryJSON},
	})

	filename := "usage-export-" + time.Now().UTC().Format("2006-01-02") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
