package codeset

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/mlavigne/client-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

// GetGroup serves the options of one group for dropdown population.
// GET /code-sets/{typeCode}?culture=fr|en
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	typeCode := chi.URLParam(r, "typeCode")
	culture := r.URL.Query().Get("culture")

	group, err := h.service.GetGroup(r.Context(), typeCode, culture)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, group)
}

// GetLabel resolves one code to its localized label.
// GET /code-sets/{typeCode}/{code}?culture=fr|en
func (h *Handler) GetLabel(w http.ResponseWriter, r *http.Request) {
	typeCode := chi.URLParam(r, "typeCode")
	code := chi.URLParam(r, "code")
	culture := r.URL.Query().Get("culture")

	label, err := h.service.GetLabel(r.Context(), typeCode, code, culture)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"code": code, "label": label})
}

// ListType is the administrative listing, including deactivated entries when
// requested. GET /admin/code-sets/{typeCode}?include_inactive=true
func (h *Handler) ListType(w http.ResponseWriter, r *http.Request) {
	typeCode := chi.URLParam(r, "typeCode")
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	entries, err := h.service.ListType(r.Context(), typeCode, includeInactive)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

// Create adds one entry. POST /admin/code-sets
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCodeSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

// Update edits labels and ordering. PUT /admin/code-sets/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateCodeSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Deactivate retires an entry. DELETE /admin/code-sets/{id}
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reactivate restores a retired entry. POST /admin/code-sets/{id}/reactivate
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
