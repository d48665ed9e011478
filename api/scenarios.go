/*
scenarios.go - Population presets for testing and demonstrations

PURPOSE:

	Provides pre-built population sizes that seed the database with
	realistic reference data for testing and demos. Each scenario
	generates stations, cashiers, a product catalog, campaigns, and a
	customer base with loyalty cards.

AVAILABLE SCENARIOS:

	corner-store:     2 stations, 50 customers - quick smoke runs
	regional-network: 10 stations, 500 customers - default demo size
	national-chain:   40 stations, 5000 customers - volume testing

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Generate a population via the factory package
 3. Persist reference data via the store
 4. Keep the dataset in memory for subsequent runs

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "regional-network", "seed": 42}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description, sizes
 2. Nothing else: loading is generic over the preset

NOTE:

	Loading a scenario resets the database. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: RunSimulation and output handlers
  - factory/population.go: Generator implementation
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "corner-store",
		Name:        "Corner Store",
		Description: "Two stations and a small loyalty base, for quick smoke runs",
		Stations:    2,
		Customers:   50,
	},
	{
		ID:          "regional-network",
		Name:        "Regional Network",
		Description: "Ten stations across regions with a mid-size customer base",
		Stations:    10,
		Customers:   500,
	},
	{
		ID:          "national-chain",
		Name:        "National Chain",
		Description: "Forty stations and five thousand customers, for volume testing",
		Stations:    40,
		Customers:   5000,
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the database, generates the preset population, and
// persists the reference data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var preset *ScenarioDTO
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			preset = &scenarios[i]
			break
		}
	}
	if preset == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	ds := datasetFromScenario(*preset, seed, time.Now().UTC())
	if err := h.Store.UpsertDataset(ctx, ds); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist reference data", err)
		return
	}

	h.mu.Lock()
	h.dataset = ds
	h.currentScenario = preset.ID
	h.lastRun = nil
	h.mu.Unlock()

	log.Printf("[API] Loaded scenario %q: %d stations, %d customers, seed=%d",
		preset.ID, len(ds.Stations), len(ds.Customers), seed)

	writeJSON(w, http.StatusOK, map[string]any{
		"scenario":  preset.ID,
		"seed":      seed,
		"stations":  len(ds.Stations),
		"cashiers":  len(ds.Cashiers),
		"customers": len(ds.Customers),
		"cards":     len(ds.Cards),
		"products":  len(ds.Products),
		"campaigns": len(ds.Campaigns),
	})
}
