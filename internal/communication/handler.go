package communication

import (
	"context"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
	"github.com/Beamwelly/CRM-Application-sub001/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, p *access.Principal, filter access.AdminFilter, q ListQuery) ([]*Communication, error)
	Add(ctx context.Context, p *access.Principal, dto AddCommunicationDTO) (*Communication, error)
	PlayRecording(ctx context.Context, p *access.Principal, id string) (*Recording, error)
	DownloadRecording(ctx context.Context, p *access.Principal, id string) (*Recording, error)
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

// ListCommunications handles GET /communications?parent_type=&parent_id=
func (h *Handler) ListCommunications(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	q := ListQuery{
		ParentType: r.URL.Query().Get("parent_type"),
		ParentID:   r.URL.Query().Get("parent_id"),
	}
	entries, err := h.Service.List(r.Context(), p, h.AdminFilter(r), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := transport.Page(r)
	h.WriteJSON(w, http.StatusOK, transport.NewListResponse(entries, limit, offset))
}

func (h *Handler) AddCommunication(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto AddCommunicationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Add(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// PlayRecording handles GET /communications/{id}/recording
func (h *Handler) PlayRecording(w http.ResponseWriter, r *http.Request) {
	h.recording(w, r, h.Service.PlayRecording)
}

// DownloadRecording handles GET /communications/{id}/recording/download
func (h *Handler) DownloadRecording(w http.ResponseWriter, r *http.Request) {
	h.recording(w, r, h.Service.DownloadRecording)
}

func (h *Handler) recording(w http.ResponseWriter, r *http.Request, fn func(context.Context, *access.Principal, string) (*Recording, error)) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	rec, err := fn(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rec)
}
