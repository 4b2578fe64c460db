package customer

import (
	"context"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
	"github.com/Beamwelly/CRM-Application-sub001/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, p *access.Principal, filter access.AdminFilter, q ListQuery) ([]*Customer, error)
	Get(ctx context.Context, p *access.Principal, id string) (*Customer, error)
	Create(ctx context.Context, p *access.Principal, dto CreateCustomerDTO) (*Customer, error)
	ConvertLead(ctx context.Context, p *access.Principal, leadID string, dto ConvertLeadDTO) (*Customer, error)
	Update(ctx context.Context, p *access.Principal, id string, dto UpdateCustomerDTO) (*Customer, error)
	Delete(ctx context.Context, p *access.Principal, id string) error
	Assign(ctx context.Context, p *access.Principal, id, assignee string) (*Customer, error)
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

// ListCustomers handles GET /customers?segment=&service_type=
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	q := ListQuery{
		Segment:     r.URL.Query().Get("segment"),
		ServiceType: r.URL.Query().Get("service_type"),
	}
	customers, err := h.Service.List(r.Context(), p, h.AdminFilter(r), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := transport.Page(r)
	h.WriteJSON(w, http.StatusOK, transport.NewListResponse(customers, limit, offset))
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreateCustomerDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// ConvertLead handles POST /leads/{id}/convert
func (h *Handler) ConvertLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto ConvertLeadDTO
	if r.ContentLength != 0 && !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.ConvertLead(r.Context(), p, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto UpdateCustomerDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Update(r.Context(), p, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) AssignCustomer(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto AssignCustomerDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Assign(r.Context(), p, chi.URLParam(r, "id"), dto.AssignedTo)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}
