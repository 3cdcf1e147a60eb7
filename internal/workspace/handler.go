package workspace

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/transport"
)

type Controllers interface {
	Controller(ctx context.Context, p *auth.Principal) (*Controller, error)
}

type ViewRequest struct {
	View View `json:"view"`
}

type ToggleRequest struct {
	ID string `json:"id"`
}

type SelectAllRequest struct {
	Selected bool `json:"selected"`
}

type BatchDeleteRequest struct {
	Confirm bool `json:"confirm"`
}

type ToggleResponse struct {
	Toggled   bool           `json:"toggled"`
	Selection SelectionState `json:"selection"`
}

type BatchDeleteResponse struct {
	Result    internal.BatchResult `json:"result"`
	Selection SelectionState       `json:"selection"`
}

type Handler struct {
	*transport.BaseHandler
	Controllers Controllers
}

func NewHandler(controllers Controllers, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Controllers: controllers,
	}
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*Controller, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	c, err := h.Controllers.Controller(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, false
	}
	return c, true
}

func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, c.Selection())
}

func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req ViewRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.View.Valid() {
		h.WriteAppError(w, internal.NewValidationFieldError("view", "view must be one of [dashboard list import users]", internal.ErrCodeValidationFailed))
		return
	}
	h.WriteJSON(w, http.StatusOK, c.SetView(req.View))
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req ToggleRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	toggled, state := c.Toggle(req.ID)
	h.WriteJSON(w, http.StatusOK, ToggleResponse{Toggled: toggled, Selection: state})
}

func (h *Handler) SelectAll(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req SelectAllRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.WriteJSON(w, http.StatusOK, c.SetAllSelected(req.Selected))
}

// BatchDelete handles POST /workspace/selection/delete. Failures still carry
// the succeeded/failed counts in the error details.
func (h *Handler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req BatchDeleteRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := c.BatchDelete(r.Context(), req.Confirm)
	if err != nil {
		h.Logger.Warn("BatchDelete: failed", "user_id", c.Principal().ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, BatchDeleteResponse{Result: res, Selection: c.Selection()})
}
