package user

import (
	"context"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
	"github.com/Beamwelly/CRM-Application-sub001/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, p *access.Principal, filter access.AdminFilter) ([]*User, error)
	Get(ctx context.Context, p *access.Principal, id string) (*User, error)
	Me(ctx context.Context, p *access.Principal) (*User, error)
	CreateAdmin(ctx context.Context, p *access.Principal, dto CreateUserDTO) (*User, error)
	CreateEmployee(ctx context.Context, p *access.Principal, dto CreateUserDTO) (*User, error)
	UpdatePermissions(ctx context.Context, p *access.Principal, id string, perms access.UserPermissions) (*User, error)
	Delete(ctx context.Context, p *access.Principal, id string) error
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

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	users, err := h.Service.List(r.Context(), p, h.AdminFilter(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := transport.Page(r)
	h.WriteJSON(w, http.StatusOK, transport.NewListResponse(users, limit, offset))
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	u, err := h.Service.Me(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	u, err := h.Service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.Service.CreateAdmin)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.Service.CreateEmployee)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, fn func(context.Context, *access.Principal, CreateUserDTO) (*User, error)) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreateUserDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	u, err := fn(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

// UpdatePermissions handles PUT /users/{id}/permissions
func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto UpdatePermissionsDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	u, err := h.Service.UpdatePermissions(r.Context(), p, chi.URLParam(r, "id"), dto.Permissions)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
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
