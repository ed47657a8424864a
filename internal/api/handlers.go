// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/database"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/models"
	syncpkg "github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/sync"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/tokenvault"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/upstream"
)

// Handler carries the dependencies of all HTTP handlers.
type Handler struct {
	store        database.Store
	orchestrator *syncpkg.Orchestrator
	db           *database.DB
	validate     *validator.Validate
	apiCfg       config.APIConfig
	startTime    time.Time
}

// NewHandler creates the handler set.
func NewHandler(store database.Store, orch *syncpkg.Orchestrator, db *database.DB, apiCfg config.APIConfig) *Handler {
	return &Handler{
		store:        store,
		orchestrator: orch,
		db:           db,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		apiCfg:       apiCfg,
		startTime:    time.Now(),
	}
}

// Health reports overall service health including store connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	status := "healthy"
	code := http.StatusOK
	if h.db != nil && !dbConnected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]any{
		"status":             status,
		"database_connected": dbConnected,
		"uptime":             time.Since(h.startTime).Seconds(),
	}, 0)
}

// HealthLive answers liveness probes. It returns 200 whenever the process
// is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, 0)
}

// HealthReady answers readiness probes. It returns 503 until the store
// accepts connections.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.db != nil && h.db.Ping(r.Context()) == nil
	code := http.StatusOK
	status := "ready"
	if !ready {
		code = http.StatusServiceUnavailable
		status = "not_ready"
	}
	respondJSON(w, code, map[string]any{"status": status}, 0)
}

// Sync triggers a synchronous sync run for one account.
//
// POST /api/v1/sync
// Body: {"account_id": ...} for re-sync, or
//
//	{"user_id", "platform", "access_token", "refresh_token"} for first link.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncpkg.Request
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.orchestrator.Run(r.Context(), req)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result, 0)
}

// respondSyncError maps fatal run errors to HTTP statuses. Authorization
// failures answer 401 with code reauth_required so the frontend can route
// the user back through the OAuth consent flow.
func (h *Handler) respondSyncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, syncpkg.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, syncpkg.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, tokenvault.ErrAuthExpired),
		errors.Is(err, tokenvault.ErrRefreshRejected),
		upstream.IsUnauthorized(err):
		respondError(w, http.StatusUnauthorized, "reauth_required",
			"account authorization is no longer valid, user must re-link the account")
	case upstream.IsNotFound(err):
		respondError(w, http.StatusUnprocessableEntity, "no_linked_account", err.Error())
	case upstream.IsRateLimited(err):
		respondError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case upstream.IsUnavailable(err):
		respondError(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
	default:
		logging.Error().Err(err).Msg("Sync run failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "sync run failed")
	}
}

// AccountOverview returns the account row with its latest snapshot.
//
// GET /api/v1/accounts/{accountID}/overview
func (h *Handler) AccountOverview(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	acct, err := h.store.GetConnectedAccount(r.Context(), accountID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "account_not_found", "no such account")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load account")
		return
	}

	overview := models.AccountOverview{Account: *acct}
	snap, err := h.store.LatestAccountSnapshot(r.Context(), accountID)
	if err == nil {
		overview.Snapshot = snap
	} else if !errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load snapshot")
		return
	}

	respondJSON(w, http.StatusOK, overview, 0)
}

// DailyMetrics returns the per-day series for a date range.
//
// GET /api/v1/accounts/{accountID}/metrics/daily?start=YYYY-MM-DD&end=YYYY-MM-DD
// The range defaults to the trailing 30 days.
func (h *Handler) DailyMetrics(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	now := time.Now().UTC()
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" {
		start = now.AddDate(0, 0, -30).Format("2006-01-02")
	}
	if end == "" {
		end = now.Format("2006-01-02")
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date", "dates must be YYYY-MM-DD")
			return
		}
	}

	rows, err := h.store.DailyMetricsRange(r.Context(), accountID, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load daily metrics")
		return
	}
	respondJSON(w, http.StatusOK, rows, len(rows))
}

// AccountContent lists content items with their latest snapshots.
//
// GET /api/v1/accounts/{accountID}/content?limit=N
func (h *Handler) AccountContent(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	limit := queryInt(r, "limit", h.apiCfg.DefaultPageSize, h.apiCfg.MaxPageSize)

	rows, err := h.store.ListContentWithLatestSnapshot(r.Context(), accountID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load content")
		return
	}
	respondJSON(w, http.StatusOK, rows, len(rows))
}

// ContentComments lists stored comments for a content item.
//
// GET /api/v1/content/{contentID}/comments?limit=N
func (h *Handler) ContentComments(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	limit := queryInt(r, "limit", h.apiCfg.DefaultPageSize, h.apiCfg.MaxPageSize)

	rows, err := h.store.ListComments(r.Context(), contentID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load comments")
		return
	}
	respondJSON(w, http.StatusOK, rows, len(rows))
}
