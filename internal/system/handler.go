package system

import (
	"context"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
)

type ServiceAPI interface {
	ClearData(ctx context.Context, p *access.Principal) (map[string]int64, error)
	Integrity(ctx context.Context, p *access.Principal) ([]IntegrityIssue, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

type ClearDataResponse struct {
	Deleted map[string]int64 `json:"deleted"`
}

type IntegrityResponse struct {
	Issues []IntegrityIssue `json:"issues"`
}

// ClearSystemData handles POST /system/clear
func (h *Handler) ClearSystemData(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	counts, err := h.Service.ClearData(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ClearDataResponse{Deleted: counts})
}

// GetIntegrity handles GET /system/integrity
func (h *Handler) GetIntegrity(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	issues, err := h.Service.Integrity(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, IntegrityResponse{Issues: issues})
}
