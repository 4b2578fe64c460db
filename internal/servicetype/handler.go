package servicetype

import (
	"context"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
)

type ServiceAPI interface {
	ListActive(ctx context.Context) ([]ServiceTypeResponse, error)
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

func (h *Handler) GetServiceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListActive(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ServiceTypesResponse{
		ServiceTypes: types,
	})
}
