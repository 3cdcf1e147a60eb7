package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Collections course.CollectionProvider
}

func NewHandler(collections course.CollectionProvider, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Collections: collections,
	}
}

// GetDashboard handles GET /dashboard over the caller's visible courses.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	coll, err := h.Collections.For(r.Context(), p)
	if err != nil {
		h.Logger.Error("Dashboard: failed to load collection", "user_id", p.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, Summarize(coll.Visible()))
}
