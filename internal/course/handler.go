package course

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service     *Service
	Collections CollectionProvider
}

func NewHandler(svc *Service, collections CollectionProvider, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Collections: collections,
	}
}

// collection resolves the caller's working copy, writing the error response
// itself when that fails.
func (h *Handler) collection(w http.ResponseWriter, r *http.Request) (*auth.Principal, Collection, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, nil, false
	}
	coll, err := h.Collections.For(r.Context(), p)
	if err != nil {
		h.Logger.Error("Course: failed to load collection", "user_id", p.ID, "error", err)
		h.HandleServiceError(w, err)
		return nil, nil, false
	}
	return p, coll, true
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	_, coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.List(coll))
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	_, coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	c, err := h.Service.Get(coll, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	p, coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	var form CourseForm
	if err := h.DecodeJSON(r, &form); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Service.Create(r.Context(), coll, p, form)
	if err != nil {
		h.Logger.Warn("CreateCourse: save failed", "user_id", p.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	p, coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	var form CourseForm
	if err := h.DecodeJSON(r, &form); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	res, err := h.Service.Update(r.Context(), coll, p, id, form)
	if err != nil {
		h.Logger.Warn("UpdateCourse: save failed", "user_id", p.ID, "course_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	p, coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), coll, p, id); err != nil {
		h.Logger.Warn("DeleteCourse: delete failed", "user_id", p.ID, "course_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCourses handles GET /courses/export?format=csv|xlsx&from=&to=&type=.
func (h *Handler) ExportCourses(w http.ResponseWriter, r *http.Request) {
	p, coll, ok := h.collection(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	format, err := ParseFormat(q.Get("format"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	filter := ExportFilter{From: q.Get("from"), To: q.Get("to"), Type: TrainingType(q.Get("type"))}

	var buf bytes.Buffer
	n, err := h.Service.Export(&buf, coll, format, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ExportCourses: export written", "user_id", p.ID, "format", format, "courses", n)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
