package app

import (
	"log/slog"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/auth"
	authPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/auth/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/communication"
	communicationPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/communication/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/events"
	"github.com/Beamwelly/CRM-Application-sub001/internal/customer"
	customerPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/customer/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/lead"
	leadPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/lead/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
	"github.com/Beamwelly/CRM-Application-sub001/internal/servicetype"
	servicetypePostgres "github.com/Beamwelly/CRM-Application-sub001/internal/servicetype/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/session"
	"github.com/Beamwelly/CRM-Application-sub001/internal/system"
	systemPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/system/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport/middleware"
	"github.com/Beamwelly/CRM-Application-sub001/internal/transport/rest"
	"github.com/Beamwelly/CRM-Application-sub001/internal/user"
	userPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/user/postgres"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Container holds every service of the application, built once over the
// gorm handle used for entity storage and the sqlx handle used for the
// hierarchy snapshot.
type Container struct {
	Logger    *slog.Logger
	Events    *events.EventBus
	Metrics   *observability.Metrics
	Evaluator *access.Evaluator
	Sessions  *session.Store
	Members   *userPostgres.MemberReader

	Auth           *auth.Service
	Users          *user.Service
	ServiceTypes   *servicetype.Service
	Leads          *lead.Service
	Customers      *customer.Service
	Communications *communication.Service
	Session        *session.Service
	System         *system.Service
}

func New(gdb *gorm.DB, sdb *sqlx.DB, sec internal.SecurityConfig, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Logger:    logger,
		Events:    events.NewEventBus(logger),
		Metrics:   observability.NewMetrics(),
		Evaluator: access.NewEvaluator(logger),
		Sessions:  session.NewStore(),
		Members:   userPostgres.NewMemberReader(sdb, logger),
	}

	c.ServiceTypes = servicetype.NewService(servicetypePostgres.NewServiceTypeRepository(gdb), logger)
	c.Users = user.NewService(userPostgres.NewUserRepository(gdb), c.ServiceTypes, c.Evaluator, c.Events, c.Metrics, sec.BCryptCost, logger)

	tokens := auth.NewJWTTokenGenerator(sec.AccessTokenSecret, sec.RefreshTokenSecret, sec.AccessTokenDuration, sec.RefreshTokenDuration)
	c.Auth = auth.NewService(authPostgres.NewRepository(gdb), c.Users, tokens, c.Sessions, c.Events, logger)

	c.Leads = lead.NewService(leadPostgres.NewLeadRepository(gdb), c.Members, c.ServiceTypes, c.Evaluator, c.Metrics, logger)
	c.Customers = customer.NewService(customerPostgres.NewCustomerRepository(gdb), c.Leads, c.Members, c.ServiceTypes, c.Evaluator, c.Metrics, logger)
	c.Communications = communication.NewService(
		communicationPostgres.NewCommunicationRepository(gdb),
		c.Members,
		map[string]communication.ParentResolver{
			communication.ParentLead:     c.Leads,
			communication.ParentCustomer: c.Customers,
		},
		c.Evaluator,
		c.Metrics,
		logger,
	)

	c.Session = session.NewService(c.Sessions, c.Members, logger)
	c.Session.Subscribe(c.Events)

	c.System = system.NewService(systemPostgres.NewPurger(gdb), c.Members, c.Evaluator, c.Events, c.Metrics, logger)
	return c
}

// Handlers builds the HTTP layer over the container's services.
func (c *Container) Handlers(health *rest.HealthHandler, openapi http.Handler) rest.Handlers {
	base := transport.NewBaseHandler(c.Logger).WithFilters(c.Sessions)
	return rest.Handlers{
		Health:        health,
		Auth:          auth.NewHandler(c.Auth),
		User:          user.NewHandler(c.Users, c.Sessions),
		Lead:          lead.NewHandler(c.Leads, c.Sessions),
		Customer:      customer.NewHandler(c.Customers, c.Sessions),
		Communication: communication.NewHandler(c.Communications, c.Sessions),
		ServiceType:   servicetype.NewHandler(base, c.ServiceTypes),
		Session:       session.NewHandler(base, c.Session),
		System:        system.NewHandler(base, c.System),
		Guard:         middleware.NewGuard(c.Evaluator, c.Metrics, c.Logger),
		Metrics:       c.Metrics.Handler(),
		OpenAPI:       openapi,
	}
}
