package lead

import (
	"context"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
	"github.com/Beamwelly/CRM-Application-sub001/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, p *access.Principal, filter access.AdminFilter, q ListQuery) ([]*Lead, error)
	Get(ctx context.Context, p *access.Principal, id string) (*Lead, error)
	Create(ctx context.Context, p *access.Principal, dto CreateLeadDTO) (*Lead, error)
	Update(ctx context.Context, p *access.Principal, id string, dto UpdateLeadDTO) (*Lead, error)
	Delete(ctx context.Context, p *access.Principal, id string) error
	Assign(ctx context.Context, p *access.Principal, id, assignee string) (*Lead, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, filters transport.AdminFilterSource) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()).WithFilters(filters),
		Service:     svc,
	}
}

// ListLeads handles GET /leads?status=&service_type=
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	q := ListQuery{
		Status:      r.URL.Query().Get("status"),
		ServiceType: r.URL.Query().Get("service_type"),
	}
	leads, err := h.Service.List(r.Context(), p, h.AdminFilter(r), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := transport.Page(r)
	h.WriteJSON(w, http.StatusOK, transport.NewListResponse(leads, limit, offset))
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	l, err := h.Service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreateLeadDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	l, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto UpdateLeadDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	l, err := h.Service.Update(r.Context(), p, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignLead handles PUT /leads/{id}/assign
func (h *Handler) AssignLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto AssignLeadDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	l, err := h.Service.Assign(r.Context(), p, chi.URLParam(r, "id"), dto.AssignedTo)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}
