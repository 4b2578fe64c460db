package rest

import (
	"log/slog"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/auth"
	"github.com/Beamwelly/CRM-Application-sub001/internal/communication"
	"github.com/Beamwelly/CRM-Application-sub001/internal/customer"
	"github.com/Beamwelly/CRM-Application-sub001/internal/lead"
	"github.com/Beamwelly/CRM-Application-sub001/internal/servicetype"
	"github.com/Beamwelly/CRM-Application-sub001/internal/session"
	"github.com/Beamwelly/CRM-Application-sub001/internal/system"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport/middleware"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport/swagger"
	"github.com/Beamwelly/CRM-Application-sub001/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything RegisterAllRoutes mounts. Nil handlers are
// skipped so tests can mount a subset.
type Handlers struct {
	Health        *HealthHandler
	Auth          *auth.Handler
	User          *user.Handler
	Lead          *lead.Handler
	Customer      *customer.Handler
	Communication *communication.Handler
	ServiceType   *servicetype.Handler
	Session       *session.Handler
	System        *system.Handler

	Guard   *middleware.Guard
	Metrics http.Handler
	OpenAPI http.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions, logger *slog.Logger) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if h.OpenAPI != nil {
		router.Handle(swagger.SpecPath, h.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}
	if h.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, h.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.ServiceType != nil {
			r.Get("/service-types", h.ServiceType.GetServiceTypes)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.User.ListUsers)
					ur.Get("/me", h.User.GetCurrentUser)
					ur.With(h.requireFlag(access.ResourceUser, access.FlagCreateAdmin)).Post("/admins", h.User.CreateAdmin)
					ur.With(h.requireFlag(access.ResourceUser, access.FlagCreateEmployee)).Post("/employees", h.User.CreateEmployee)
					ur.Get("/{id}", h.User.GetUser)
					ur.Put("/{id}/permissions", h.User.UpdatePermissions)
					ur.Delete("/{id}", h.User.DeleteUser)
				})
			}

			if h.Lead != nil {
				pr.Route("/leads", func(lr chi.Router) {
					lr.Get("/", h.Lead.ListLeads)
					lr.With(h.requireFlag(access.ResourceLead, access.FlagCreateLeads)).Post("/", h.Lead.CreateLead)
					lr.Get("/{id}", h.Lead.GetLead)
					lr.Put("/{id}", h.Lead.UpdateLead)
					lr.Delete("/{id}", h.Lead.DeleteLead)
					lr.Put("/{id}/assign", h.Lead.AssignLead)
					if h.Customer != nil {
						lr.With(h.requireFlag(access.ResourceCustomer, access.FlagCreateCustomers)).Post("/{id}/convert", h.Customer.ConvertLead)
					}
				})
			}

			if h.Customer != nil {
				pr.Route("/customers", func(cr chi.Router) {
					cr.Get("/", h.Customer.ListCustomers)
					cr.With(h.requireFlag(access.ResourceCustomer, access.FlagCreateCustomers)).Post("/", h.Customer.CreateCustomer)
					cr.Get("/{id}", h.Customer.GetCustomer)
					cr.Put("/{id}", h.Customer.UpdateCustomer)
					cr.Delete("/{id}", h.Customer.DeleteCustomer)
					cr.Put("/{id}/assign", h.Customer.AssignCustomer)
				})
			}

			if h.Communication != nil {
				pr.Route("/communications", func(cr chi.Router) {
					cr.Get("/", h.Communication.ListCommunications)
					cr.With(h.requireFlag(access.ResourceCommunication, access.FlagAddCommunications)).Post("/", h.Communication.AddCommunication)
					cr.Get("/{id}/recording", h.Communication.PlayRecording)
					cr.Get("/{id}/recording/download", h.Communication.DownloadRecording)
				})
			}

			if h.Session != nil {
				pr.Route("/session/admin-filter", func(sr chi.Router) {
					sr.Get("/", h.Session.GetAdminFilter)
					sr.Group(func(dr chi.Router) {
						dr.Use(h.requireRole(access.RoleDeveloper, internal.ErrImpersonationNotAllowed))
						dr.Put("/", h.Session.SelectAdminFilter)
						dr.Delete("/", h.Session.ClearAdminFilter)
					})
				})
			}

			if h.System != nil {
				pr.Route("/system", func(sr chi.Router) {
					sr.With(h.requireFlag(system.Resource, access.FlagClearSystemData)).Post("/clear", h.System.ClearSystemData)
					sr.Get("/integrity", h.System.GetIntegrity)
				})
			}
		})
	})
}

func (h Handlers) requireFlag(resource access.Resource, flag access.Flag) func(http.Handler) http.Handler {
	if h.Guard == nil {
		return passThrough
	}
	return h.Guard.RequireFlag(resource, flag)
}

func (h Handlers) requireRole(role access.Role, denial *internal.AppError) func(http.Handler) http.Handler {
	if h.Guard == nil {
		return passThrough
	}
	return h.Guard.RequireRole(role, denial)
}

func passThrough(next http.Handler) http.Handler { return next }
