package importer

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/transport"
)

const defaultMaxUploadBytes = 5 << 20

type TextRequest struct {
	Text string `json:"text"`
}

type Handler struct {
	*transport.BaseHandler
	Service        *Service
	MaxUploadBytes int64
}

func NewHandler(svc *Service, maxUploadBytes int64, lg *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        svc,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
	}
	return p, ok
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="course-import-template.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "\ufeff"+Template())
}

// CreateImport handles POST /imports. The input is a multipart "file" (text
// or .xlsx), a JSON {"text": ...} body or the raw request body.
func (h *Handler) CreateImport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	input, err := h.readInput(w, r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	sess, err := h.Service.Create(p, input)
	if err != nil {
		h.Logger.Warn("CreateImport: parse refused", "user_id", p.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, sess)
}

func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	sess, err := h.Service.Get(p, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) ResubmitImport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	input, err := h.readInput(w, r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	sess, err := h.Service.Resubmit(p, chi.URLParam(r, "id"), input)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) BackImport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	sess, err := h.Service.Back(p, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) CommitImport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	sess, err := h.Service.Commit(r.Context(), p, id)
	if err != nil {
		h.Logger.Error("CommitImport: commit failed", "user_id", p.ID, "session_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) DeleteImport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.Service.Discard(p, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
			return "", h.bodyError(err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", internal.NewValidationFieldError("file", "file is required", internal.ErrCodeValidationFailed)
		}
		defer file.Close()
		if IsWorkbook(header.Filename, header.Header.Get("Content-Type")) {
			return WorkbookText(file)
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return "", h.bodyError(err)
		}
		return string(data), nil
	case "application/json":
		var req TextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", h.bodyError(err)
		}
		return req.Text, nil
	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", h.bodyError(err)
		}
		return string(data), nil
	}
}

func (h *Handler) bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &internal.AppError{
			Type:       internal.ErrorTypeValidation,
			Code:       internal.ErrCodeUploadTooLarge,
			Message:    "upload exceeds the size limit",
			StatusCode: http.StatusRequestEntityTooLarge,
			Cause:      err,
		}
	}
	return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
}
