/*
handlers.go - HTTP API handlers for the transaction simulator

PURPOSE:
  Exposes the simulation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine,
  the factory generators, and the sqlite store.

ENDPOINTS:
  Scenarios:
    GET    /api/scenarios              List population presets
    GET    /api/scenarios/current      Currently loaded preset
    POST   /api/scenarios/load         Generate + persist a population
    POST   /api/scenarios/reset        Clear all data

  Runs:
    POST   /api/runs                   Execute a simulation run
    GET    /api/runs/last              Summary of the last run

  Outputs:
    GET    /api/transactions                 List transactions
    GET    /api/transactions/{id}/lines      Line items for one transaction
    GET    /api/redemptions                  List campaign redemptions
    GET    /api/stats                        Row counts per table

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - dataset: The currently loaded population (nil until a scenario loads)
  - lastRun: Summary of the most recent run

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: No scenario loaded yet
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Population presets
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/forecourt/pos-engine/factory"
	"github.com/forecourt/pos-engine/sim"
	"github.com/forecourt/pos-engine/store/sqlite"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	mu              sync.Mutex
	dataset         *sim.Dataset
	currentScenario string
	lastRun         *RunSummaryDTO
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// RunSimulation executes one simulation run over the loaded population and
// persists the outputs.
// POST /api/runs
func (h *Handler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.Body != nil {
		// An empty body means "defaults"; a malformed one is a client error.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dataset == nil {
		writeError(w, http.StatusConflict, "No scenario loaded; POST /api/scenarios/load first", nil)
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	now := time.Now().UTC()
	if req.Now != "" {
		parsed, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'now' timestamp, expected RFC 3339", err)
			return
		}
		now = parsed.UTC()
	}

	engine := &sim.Engine{Dataset: h.dataset, Seed: seed, Now: now}
	result, err := engine.Run()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Simulation run failed", err)
		return
	}

	if err := h.Store.UpsertRun(r.Context(), result); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist run outputs", err)
		return
	}

	summary := RunSummaryDTO{
		Seed:         seed,
		Now:          now.Format(time.RFC3339),
		Transactions: len(result.Transactions),
		Lines:        len(result.Lines),
		Redemptions:  len(result.Redemptions),
	}
	h.lastRun = &summary

	log.Printf("[API] Run complete: seed=%d transactions=%d lines=%d redemptions=%d",
		seed, summary.Transactions, summary.Lines, summary.Redemptions)

	writeJSON(w, http.StatusOK, summary)
}

// GetLastRun returns the summary of the most recent run, if any.
// GET /api/runs/last
func (h *Handler) GetLastRun(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lastRun == nil {
		writeError(w, http.StatusNotFound, "No run has been executed yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.lastRun)
}

// =============================================================================
// OUTPUT HANDLERS
// =============================================================================

// ListTransactions returns persisted transactions, newest first.
// GET /api/transactions?limit=N
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)

	txns, err := h.Store.ListTransactions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(txns))
	for i, t := range txns {
		dtos[i] = toTransactionDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTransactionLines returns the line items of one transaction.
// GET /api/transactions/{id}/lines
func (h *Handler) GetTransactionLines(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lines, err := h.Store.ListLines(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list lines", err)
		return
	}
	if len(lines) == 0 {
		writeError(w, http.StatusNotFound, "Transaction not found or has no lines", nil)
		return
	}

	dtos := make([]TransactionLineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = toLineDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListRedemptions returns campaign redemptions, optionally for one customer.
// GET /api/redemptions?customer_id=X&limit=N
func (h *Handler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	limit := queryInt(r, "limit", 100)

	reds, err := h.Store.ListRedemptions(r.Context(), customerID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list redemptions", err)
		return
	}

	dtos := make([]RedemptionDTO, len(reds))
	for i, red := range reds {
		dtos[i] = RedemptionDTO{ID: red.ID, CampaignID: red.CampaignID, CustomerID: red.CustomerID}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStats returns row counts across all tables.
// GET /api/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Store.Counts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read counts", err)
		return
	}

	h.mu.Lock()
	scenario := h.currentScenario
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, StatsDTO{Scenario: scenario, Counts: counts})
}

// ResetDatabase clears all output and reference data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.dataset = nil
	h.currentScenario = ""
	h.lastRun = nil
	h.mu.Unlock()

	log.Printf("[API] Database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func toTransactionDTO(t sim.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:        t.ID,
		Timestamp: t.Timestamp.Format(time.RFC3339),
		CashierID: t.CashierID,
		CardID:    t.CardID,
	}
	if t.Origin != nil {
		dto.OriginReason = strPtr(t.Origin.Reason)
		dto.OriginTxnID = strPtr(t.Origin.TransactionID)
	}
	return dto
}

func toLineDTO(l sim.TransactionLine) TransactionLineDTO {
	return TransactionLineDTO{
		ID:            l.ID,
		TransactionID: l.TransactionID,
		ProductID:     l.ProductID,
		Product:       l.Product,
		Price:         l.Price.String(),
		Discount:      l.Discount.String(),
		Quantity:      l.Quantity.String(),
		Total:         l.Total.String(),
		RedemptionID:  l.RedemptionID,
		Context:       l.Context,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func strPtr(s string) *string {
	return &s
}

// datasetFromScenario builds a population for the given preset.
func datasetFromScenario(s ScenarioDTO, seed int64, now time.Time) *sim.Dataset {
	return factory.New(seed, now).Dataset(s.Stations, s.Customers)
}
