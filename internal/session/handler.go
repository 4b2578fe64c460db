package session

import (
	"context"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
)

type ServiceAPI interface {
	Current(p *access.Principal, sessionID string) (FilterView, error)
	Select(ctx context.Context, p *access.Principal, sessionID, adminID string) (FilterView, error)
	Clear(p *access.Principal, sessionID string) error
}

type SelectAdminDTO struct {
	AdminID string `json:"admin_id"`
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

// GetAdminFilter handles GET /session/admin-filter
func (h *Handler) GetAdminFilter(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	view, err := h.Service.Current(p, internal.SessionIDFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// SelectAdminFilter handles PUT /session/admin-filter
func (h *Handler) SelectAdminFilter(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	var dto SelectAdminDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	view, err := h.Service.Select(r.Context(), p, internal.SessionIDFromContext(r.Context()), dto.AdminID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// ClearAdminFilter handles DELETE /session/admin-filter
func (h *Handler) ClearAdminFilter(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	if err := h.Service.Clear(p, internal.SessionIDFromContext(r.Context())); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
