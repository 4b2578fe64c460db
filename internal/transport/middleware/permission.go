package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
)

// Guard gates create-style routes on a boolean permission flag. Such actions
// have no target entity, so the flag is the whole decision.
type Guard struct {
	evaluator *access.Evaluator
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewGuard(ev *access.Evaluator, m *observability.Metrics, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{evaluator: ev, metrics: m, logger: logger}
}

// RequireFlag must be mounted behind the auth middleware.
func (g *Guard) RequireFlag(resource access.Resource, flag access.Flag) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrUnauthenticated)
				return
			}

			allowed, err := g.evaluator.Allowed(p, flag)
			if err != nil || !allowed {
				g.metrics.RecordDecision(string(resource), string(flag), observability.OutcomeDenied)
				g.logger.Warn("access denied: missing permission flag",
					"user_id", p.ID,
					"role", p.Role,
					"flag", flag)
				writeAppError(w, internal.ErrPermissionDenied)
				return
			}

			g.metrics.RecordDecision(string(resource), string(flag), observability.OutcomeAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole is used for developer-only surfaces such as the admin filter.
func (g *Guard) RequireRole(role access.Role, denial *internal.AppError) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrUnauthenticated)
				return
			}
			if p.Role != role {
				g.logger.Warn("access denied: role required", "user_id", p.ID, "role", p.Role, "required", role)
				writeAppError(w, denial)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
