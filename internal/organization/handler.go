package organization

import (
	"net/http"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Taxonomy *Taxonomy
}

func NewHandler(baseHandler *transport.BaseHandler, taxonomy *Taxonomy) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Taxonomy:    taxonomy,
	}
}

// GetCompanies handles GET /organization/companies. With ?scope=visible the
// list is narrowed to what the caller may see.
func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	companies := h.Taxonomy.Companies()

	if r.URL.Query().Get("scope") == "visible" {
		p, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			h.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		companies = h.Taxonomy.VisibleTo(p)
	}

	if companies == nil {
		companies = []Company{}
	}

	h.WriteJSON(w, http.StatusOK, CompaniesResponse{Companies: companies})
}
