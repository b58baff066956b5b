package access

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/mlavigne/client-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service  *Service
	resolver *Resolver
}

func NewHandler(service *Service, resolver *Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
		resolver:    resolver,
	}
}

// ListViews lists the protected views. GET /admin/views?include_inactive=true
func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	views, err := h.service.ListViews(r.Context(), includeInactive)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views)
}

// CreateView registers a protected view. POST /admin/views
func (h *Handler) CreateView(w http.ResponseWriter, r *http.Request) {
	var req CreateViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.CreateView(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

// ListAccessTypes lists the coarse profiles. GET /admin/access-types
func (h *Handler) ListAccessTypes(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	types, err := h.service.ListAccessTypes(r.Context(), includeInactive)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, types)
}

// CreateAccessType adds a coarse profile. POST /admin/access-types
func (h *Handler) CreateAccessType(w http.ResponseWriter, r *http.Request) {
	var req CreateAccessTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.CreateAccessType(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

// SetDefaultGrant sets the privilege an access type carries on one view.
// PUT /admin/access-types/{accessTypeCode}/views/{viewCode}
func (h *Handler) SetDefaultGrant(w http.ResponseWriter, r *http.Request) {
	accessTypeCode := chi.URLParam(r, "accessTypeCode")
	viewCode := chi.URLParam(r, "viewCode")

	var req SetGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetDefaultGrant(r.Context(), accessTypeCode, viewCode, req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUserGrants lists the explicit grants of one user.
// GET /admin/users/{userID}/grants
func (h *Handler) ListUserGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.service.ListUserGrants(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, grants)
}

// SetGrant upserts one explicit grant.
// PUT /admin/users/{userID}/grants/{viewCode}
func (h *Handler) SetGrant(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	viewCode := chi.URLParam(r, "viewCode")

	var req SetGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.SetGrant(r.Context(), userID, viewCode, req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// RemoveGrant drops the explicit grant so the access-type default applies.
// DELETE /admin/users/{userID}/grants/{viewCode}
func (h *Handler) RemoveGrant(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	viewCode := chi.URLParam(r, "viewCode")

	if err := h.service.RemoveGrant(r.Context(), userID, viewCode); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignAccessType sets the coarse access type of a user.
// PUT /admin/users/{userID}/access-type
func (h *Handler) AssignAccessType(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req AssignAccessTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.AssignAccessType(r.Context(), userID, req); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Effective reports the caller-queried effective privilege of a user on a
// view. GET /admin/users/{userID}/effective/{viewCode}
func (h *Handler) Effective(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	viewCode := chi.URLParam(r, "viewCode")

	privilege := h.resolver.Resolve(r.Context(), userID, viewCode)
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"user_id":   userID,
		"view_code": viewCode,
		"privilege": privilege.String(),
	})
}
