package auth

import (
	"context"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
	"github.com/Beamwelly/CRM-Application-sub001/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	Authorize(ctx context.Context, tokenString string) (*access.Principal, *Claims, error)
	Logout(ctx context.Context, claims *Claims) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if dto.RefreshToken == "" {
		h.HandleServiceError(w, internal.NewValidationFieldError("refresh_token", "refresh_token is required", internal.ErrCodeValidationFailed))
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	claims, err := h.Service.ValidateAccessToken(token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Logout(r.Context(), claims); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware resolves the bearer token to a principal loaded fresh from
// the store and puts it, with the session id, on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, internal.ErrUnauthenticated)
			return
		}

		p, claims, err := h.Service.Authorize(r.Context(), token)
		if err != nil {
			h.Logger.Debug("auth middleware: rejecting request", "error", err, "path", r.URL.Path)
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), p)
		ctx = internal.ContextWithSessionID(ctx, claims.SessionID())
		ctx = logger.With(ctx, "user_id", p.ID, "session_id", claims.SessionID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
