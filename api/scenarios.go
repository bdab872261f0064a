/*
scenarios.go - Demo portfolios

PURPOSE:
  Exposes the factory presets so a client can try the engine without
  typing a portfolio. Running a scenario projects it from the current month
  and saves it like any other run.

USAGE VIA API:
  GET  /api/scenarios
  POST /api/scenarios/two-card-snowball/run

ADDING NEW SCENARIOS:
  Add a Preset to factory.Presets(); nothing here changes.

SEE ALSO:
  - factory/presets.go: Preset portfolios
  - handlers.go: project()
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/debt-engine/factory"
)

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	presets := factory.Presets()
	dtos := make([]ScenarioDTO, 0, len(presets))
	for _, p := range presets {
		dtos = append(dtos, ScenarioDTO{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Portfolio:   p.Portfolio,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RunScenario projects and saves a demo portfolio.
// ?totals=true adds the Totals ledger.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "id")
	preset, ok := factory.FindPreset(scenarioID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario: %s", scenarioID), nil)
		return
	}

	input, err := h.Factory.FromJSON(preset.Portfolio)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto, err := h.project(r.Context(), preset.Name, input, r.URL.Query().Get("totals") == "true")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}
