package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"colorspot-server/internal/access"
	"colorspot-server/internal/catalog"
	"colorspot-server/internal/domain"
	"colorspot-server/internal/middleware"
)

type testSummaryDTO struct {
	Slug                 string `json:"slug"`
	Position             int    `json:"position"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	CanAccess            bool   `json:"can_access"`
	RequiresSubscription bool   `json:"requires_subscription,omitempty"`
}

type reactionDTO struct {
	ColorKey   string   `json:"color_key"`
	Color      string   `json:"color"`
	Substances []string `json:"substances"`
	Confidence int      `json:"confidence"`
}

type testDetailDTO struct {
	Slug        string        `json:"slug"`
	Position    int           `json:"position"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Preparation string        `json:"preparation"`
	SafetyNotes string        `json:"safety_notes"`
	Reactions   []reactionDTO `json:"reactions"`
}

func newTestDetailDTO(test domain.ReagentTest, locale string) testDetailDTO {
	reactions := make([]reactionDTO, 0, len(test.Reactions))
	for _, reaction := range test.Reactions {
		reactions = append(reactions, reactionDTO{
			ColorKey:   reaction.ColorKey,
			Color:      reaction.Color.In(locale),
			Substances: reaction.Substances,
			Confidence: reaction.Confidence,
		})
	}
	return testDetailDTO{
		Slug:        test.Slug,
		Position:    test.Position,
		Name:        test.Name.In(locale),
		Description: test.Description.In(locale),
		Preparation: test.Preparation.In(locale),
		SafetyNotes: test.SafetyNotes.In(locale),
		Reactions:   reactions,
	}
}

// ListTests returns every catalog entry annotated with the caller's access
// under the current settings. The list itself is public; only the per-test
// content is gated.
func (a *App) ListTests(w http.ResponseWriter, r *http.Request) {
	settings := a.Settings.Current()
	paid := middleware.PlanFromContext(r.Context()) == string(domain.UserPlanPremium)
	locale := middleware.LocaleFromContext(r.Context())

	tests := a.Catalog.All()
	out := make([]testSummaryDTO, 0, len(tests))
	for _, test := range tests {
		decision := access.Evaluate(test.Index(), paid, settings)
		out = append(out, testSummaryDTO{
			Slug:                 test.Slug,
			Position:             test.Position,
			Name:                 test.Name.In(locale),
			Description:          test.Description.In(locale),
			CanAccess:            decision.CanAccess,
			RequiresSubscription: decision.RequiresSubscription,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"tests": out})
}

// GetTest serves a single test through the access gate. The response is
// always a gate envelope; non-content states carry no test fields.
func (a *App) GetTest(w http.ResponseWriter, r *http.Request) {
	test, ok := a.lookupTest(chi.URLParam(r, "position"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown test")
		return
	}
	resp := a.gate(r, test)
	a.json(w, gateStatus(resp.State), resp)
}

type interpretRequest struct {
	ObservedColor string `json:"observed_color"`
}

type interpretResponse struct {
	Test    string              `json:"test"`
	Color   string              `json:"observed_color"`
	Matches []substanceMatchDTO `json:"matches"`
}

type substanceMatchDTO struct {
	Substance  string `json:"substance"`
	Confidence int    `json:"confidence"`
	ColorKey   string `json:"color_key"`
	Color      string `json:"color"`
}

// InterpretTest matches an observed reaction color against the test's color
// chart. Interpretation sits behind the same gate as the test content.
func (a *App) InterpretTest(w http.ResponseWriter, r *http.Request) {
	test, ok := a.lookupTest(chi.URLParam(r, "position"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown test")
		return
	}
	resp := a.gate(r, test)
	if resp.State != domain.GateContent {
		a.json(w, gateStatus(resp.State), resp)
		return
	}

	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.ObservedColor) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "observed_color required")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	matches := catalog.Interpret(test, req.ObservedColor)
	out := make([]substanceMatchDTO, 0, len(matches))
	for _, match := range matches {
		out = append(out, substanceMatchDTO{
			Substance:  match.Substance,
			Confidence: match.Confidence,
			ColorKey:   match.ColorKey,
			Color:      match.Color.In(locale),
		})
	}
	a.json(w, http.StatusOK, interpretResponse{
		Test:    test.Slug,
		Color:   req.ObservedColor,
		Matches: out,
	})
}

// lookupTest resolves a URL parameter that is either a 1-based position or a
// slug.
func (a *App) lookupTest(param string) (domain.ReagentTest, bool) {
	if position, err := strconv.Atoi(param); err == nil {
		return a.Catalog.ByPosition(position)
	}
	return a.Catalog.BySlug(param)
}
