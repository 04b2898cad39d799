// Package http exposes the agent's local control surface: status inspection,
// manual reconciliation, and the submission cycle endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shield/internal/exposure/models"
	"shield/internal/exposure/status"
	"shield/pkg/platform/httputil"
)

// Engine defines the exposure operations the control surface drives.
type Engine interface {
	Reconcile(ctx context.Context) error
	StartKeysSubmission(ctx context.Context, oneTimeCode string) error
	FetchAndSubmitKeys(ctx context.Context) error
}

// Handler wires exposure endpoints to the engine and the status cell.
type Handler struct {
	engine Engine
	status *status.Store
	logger *slog.Logger
}

// New constructs the control-surface handler with its dependencies.
func New(engine Engine, statusStore *status.Store, logger *slog.Logger) *Handler {
	return &Handler{
		engine: engine,
		status: statusStore,
		logger: logger,
	}
}

// Register mounts all endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/status", h.HandleStatus)
	r.Post("/reconcile", h.HandleReconcile)
	r.Post("/submission/claim", h.HandleClaim)
	r.Post("/submission/keys", h.HandleSubmitKeys)
	r.Get("/healthz", h.HandleHealth)
}

// HandleStatus handles GET /status requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.status.Get())
}

// HandleReconcile handles POST /reconcile requests. The engine coalesces
// concurrent runs, so this is safe to hit while the scheduler is active.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	if err := h.engine.Reconcile(ctx); err != nil {
		h.logger.ErrorContext(ctx, "manual reconciliation failed", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "manual reconciliation complete",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, h.status.Get())
}

type claimRequest struct {
	OneTimeCode string `json:"oneTimeCode"`
}

// HandleClaim handles POST /submission/claim requests.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.engine.StartKeysSubmission(ctx, req.OneTimeCode); err != nil {
		h.logger.ErrorContext(ctx, "one-time code claim failed", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission cycle started")
	httputil.WriteJSON(w, http.StatusOK, h.status.Get())
}

// HandleSubmitKeys handles POST /submission/keys requests.
func (h *Handler) HandleSubmitKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.engine.FetchAndSubmitKeys(ctx); err != nil {
		h.logger.ErrorContext(ctx, "key submission failed", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "diagnosis keys submitted")
	httputil.WriteJSON(w, http.StatusOK, h.status.Get())
}

// HandleHealth handles GET /healthz requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := h.status.Get()
	checked := int64(0)
	if st.LastChecked != nil {
		checked = st.LastChecked.Timestamp
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"exposure_status":  st.Type,
		"last_checked_at":  checked,
		"needs_submission": st.Type == models.StatusDiagnosed && st.NeedsSubmission,
	})
}
