/*
handlers.go - HTTP API handlers for the projection engine

PURPOSE:
  Exposes the snowball projection engine via REST API. Handles HTTP
  request/response, body decoding, and delegates to the finance package.

ENDPOINTS:
  Projections:
    POST   /api/projections              Compute and save a projection (201)
    GET    /api/projections              List saved runs, newest first
    GET    /api/projections/{id}         Saved run summary
    GET    /api/projections/{id}/entries Saved schedule, month by month
    POST   /api/projections/preview      Compute without saving (cached)

  Compare:
    POST   /api/compare                  Same portfolio, every sort order

  Scenarios:
    GET    /api/scenarios                List demo portfolios
    POST   /api/scenarios/{id}/run       Project and save a demo portfolio

REQUEST BODIES:
  A portfolio (factory.PortfolioJSON) as JSON, or as YAML when the
  Content-Type mentions yaml.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, validation errors (code invalid_input)
  - 404: Unknown run or scenario
  - 422: Well-formed portfolio that cannot be projected
         (codes non_amortizing, did_not_converge)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenarios
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/warp/debt-engine/cache"
	"github.com/warp/debt-engine/events"
	"github.com/warp/debt-engine/factory"
	"github.com/warp/debt-engine/finance"
	"github.com/warp/debt-engine/internal/id"
	"gopkg.in/yaml.v3"
)

const (
	maxBodyBytes     = 1 << 20
	defaultListLimit = 50
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   finance.RunStore
	Engine  *finance.ProjectionEngine
	Factory *factory.PortfolioFactory

	// Cache holds rendered previews for CacheTTL.
	Cache    cache.ProjectionCache
	CacheTTL time.Duration

	// Events is optional; nil disables projection.completed events.
	Events *EventDispatcher

	Logger zerolog.Logger
	Now    func() time.Time
	NewID  func() string
}

// NewHandler creates a handler with a no-op cache and no events.
func NewHandler(store finance.RunStore, engine *finance.ProjectionEngine, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Engine:   engine,
		Factory:  factory.NewPortfolioFactory(),
		Cache:    cache.Noop{},
		CacheTTL: 10 * time.Minute,
		Logger:   logger,
		Now:      time.Now,
		NewID:    id.NewRunID,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// CreateProjection computes a projection, saves it as a run and returns it.
func (h *Handler) CreateProjection(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input, err := h.Factory.FromJSON(req.PortfolioJSON)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto, err := h.project(r.Context(), req.Name, input, req.IncludeTotals)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// project runs, saves and announces a projection.
func (h *Handler) project(ctx context.Context, name string, input finance.ProjectionInput, includeTotals bool) (ProjectionDTO, error) {
	p, err := h.Engine.Project(input)
	if err != nil {
		return ProjectionDTO{}, err
	}

	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Projection from %s", p.StartDate)
	}
	now := h.Now().UTC()
	run := finance.NewRun(h.NewID(), name, input, p, now)
	if err := h.Store.Save(ctx, run, finance.Flatten(p)); err != nil {
		return ProjectionDTO{}, fmt.Errorf("failed to save run: %w", err)
	}

	h.Logger.Info().
		Str("run_id", run.ID).
		Str("strategy", run.Summary.Strategy).
		Int("accounts", len(input.Accounts)).
		Int("months", run.Summary.NumberOfMonths).
		Msg("projection saved")

	if h.Events != nil {
		h.Events.Enqueue(events.NewProjectionCompleted(run, now))
	}

	dto := NewProjectionDTO(p, includeTotals)
	dto.ID = run.ID
	dto.Name = run.Name
	dto.CreatedAt = &run.CreatedAt
	return dto, nil
}

// PreviewProjection computes a projection without saving it.
// Responses are cached by input fingerprint; X-Cache reports HIT or MISS.
func (h *Handler) PreviewProjection(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input, err := h.Factory.FromJSON(req.PortfolioJSON)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	key := cache.Key(input, h.Engine.StartMonth(input))
	if req.IncludeTotals {
		key += ":totals"
	}

	if body, ok, err := h.Cache.Get(ctx, key); err != nil {
		h.logger(r).Warn().Err(err).Str("key", key).Msg("preview cache read failed")
	} else if ok {
		writeRawJSON(w, http.StatusOK, "HIT", body)
		return
	}

	p, err := h.Engine.Project(input)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	body, err := json.Marshal(NewProjectionDTO(p, req.IncludeTotals))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode projection", err)
		return
	}
	if err := h.Cache.Set(ctx, key, body, h.CacheTTL); err != nil {
		h.logger(r).Warn().Err(err).Str("key", key).Msg("preview cache write failed")
	}
	writeRawJSON(w, http.StatusOK, "MISS", body)
}

// ListProjections returns saved runs, newest first. ?limit= caps the list.
func (h *Handler) ListProjections(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.List(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run, h.Factory))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProjection returns one saved run.
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(run, h.Factory))
}

// GetProjectionEntries returns the saved schedule of a run.
func (h *Handler) GetProjectionEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.Entries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	if account := r.URL.Query().Get("account"); account != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Account == account {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	writeJSON(w, http.StatusOK, toRunEntryDTOs(entries))
}

// =============================================================================
// COMPARE HANDLER
// =============================================================================

// Compare projects the same portfolio under several sort orders.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input, err := h.Factory.FromJSON(req.PortfolioJSON)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	orders := make([]finance.SortOrder, 0, len(req.Orders))
	for _, raw := range req.Orders {
		order, err := finance.ParseSortOrder(raw)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		orders = append(orders, order)
	}

	results, err := finance.Compare(h.Engine, input, orders)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewComparisonDTOs(results))
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return err
	}
	if len(data) > maxBodyBytes {
		return fmt.Errorf("body exceeds %d bytes", maxBodyBytes)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return errors.New("empty body")
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeRawJSON(w http.ResponseWriter, status int, cacheStatus string, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps finance errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation    *finance.ValidationError
		nonAmortizing *finance.NonAmortizingPaymentError
		diverged      *finance.ProjectionDidNotConvergeError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: validation.Error(),
			Code:  "invalid_input",
			Details: map[string]string{
				"field":   validation.Field,
				"account": validation.Account,
				"reason":  validation.Reason,
			},
		})
	case errors.As(err, &nonAmortizing):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: nonAmortizing.Error(),
			Code:  "non_amortizing",
			Details: map[string]any{
				"account":     nonAmortizing.Account,
				"month_index": nonAmortizing.MonthIndex,
				"month":       nonAmortizing.Month.String(),
				"balance":     money(nonAmortizing.Balance),
				"interest":    money(nonAmortizing.Interest),
				"payment":     money(nonAmortizing.Payment),
			},
		})
	case errors.As(err, &diverged):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: diverged.Error(),
			Code:  "did_not_converge",
			Details: map[string]any{
				"max_months":        diverged.MaxMonths,
				"remaining_balance": money(diverged.RemainingBalance),
			},
		})
	case finance.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, finance.ErrDuplicateRun):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "duplicate"})
	default:
		h.logger(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func (h *Handler) logger(r *http.Request) *zerolog.Logger {
	l := h.Logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
	return &l
}
