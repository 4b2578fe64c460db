package seed

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/app"
	"github.com/Beamwelly/CRM-Application-sub001/internal/communication"
	"github.com/Beamwelly/CRM-Application-sub001/internal/customer"
	"github.com/Beamwelly/CRM-Application-sub001/internal/lead"
	"github.com/Beamwelly/CRM-Application-sub001/internal/user"
)

const (
	DefaultDeveloperEmail = "developer@crm.local"
	DefaultPassword       = "changeme123"
)

type Options struct {
	DeveloperEmail string
	Password       string
	// Demo adds two admin teams with leads, a converted customer and a
	// logged call.
	Demo bool
	// Clear purges leads, customers and communications first.
	Clear bool
}

type Report struct {
	ServiceTypes     int
	DeveloperID      string
	DeveloperCreated bool
	Cleared          map[string]int64
	Users            int
	Leads            int
	Customers        int
	Communications   int
}

// Run goes through the services, not the tables, so seeded data obeys the
// same rules as data entered over the API. It is safe to run repeatedly.
func Run(ctx context.Context, c *app.Container, opts Options) (Report, error) {
	var report Report
	if opts.DeveloperEmail == "" {
		opts.DeveloperEmail = DefaultDeveloperEmail
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}

	n, err := c.ServiceTypes.SeedBuiltins(ctx)
	if err != nil {
		return report, fmt.Errorf("seed service types: %w", err)
	}
	report.ServiceTypes = n

	dev, created, err := c.Users.EnsureDeveloper(ctx, user.CreateUserDTO{
		Email:    opts.DeveloperEmail,
		Name:     "Developer",
		Password: opts.Password,
	})
	if err != nil {
		return report, fmt.Errorf("ensure developer: %w", err)
	}
	report.DeveloperID = dev.ID
	report.DeveloperCreated = created

	devPrincipal, err := c.Users.LoadPrincipal(ctx, dev.ID)
	if err != nil {
		return report, fmt.Errorf("load developer: %w", err)
	}

	if opts.Clear {
		cleared, err := c.System.ClearData(ctx, devPrincipal)
		if err != nil {
			return report, fmt.Errorf("clear data: %w", err)
		}
		report.Cleared = cleared
	}

	if opts.Demo {
		if err := seedDemo(ctx, c, devPrincipal, opts.Password, &report); err != nil {
			return report, err
		}
	}

	c.Logger.Info("seed finished",
		"service_types", report.ServiceTypes,
		"developer_created", report.DeveloperCreated,
		"users", report.Users,
		"leads", report.Leads,
		"customers", report.Customers,
		"communications", report.Communications)
	return report, nil
}

type demoTeam struct {
	admin     string
	employees []string
}

var demoTeams = []demoTeam{
	{admin: "north", employees: []string{"asha", "vikram"}},
	{admin: "south", employees: []string{"meera"}},
}

func seedDemo(ctx context.Context, c *app.Container, dev *access.Principal, password string, report *Report) error {
	for _, team := range demoTeams {
		admin, err := c.Users.CreateAdmin(ctx, dev, user.CreateUserDTO{
			Email:    team.admin + ".admin@crm.local",
			Name:     "Admin " + team.admin,
			Password: password,
		})
		if stderrors.Is(err, internal.ErrEmailTaken) {
			c.Logger.Info("demo team already present", "team", team.admin)
			continue
		}
		if err != nil {
			return fmt.Errorf("create admin %s: %w", team.admin, err)
		}
		report.Users++

		adminPrincipal, err := c.Users.LoadPrincipal(ctx, admin.ID)
		if err != nil {
			return err
		}

		for _, name := range team.employees {
			emp, err := c.Users.CreateEmployee(ctx, adminPrincipal, user.CreateUserDTO{
				Email:    name + "@crm.local",
				Name:     name,
				Password: password,
				Position: string(access.PositionRelationshipManager),
			})
			if err != nil {
				return fmt.Errorf("create employee %s: %w", name, err)
			}
			report.Users++

			empPrincipal, err := c.Users.LoadPrincipal(ctx, emp.ID)
			if err != nil {
				return err
			}
			if err := seedPipeline(ctx, c, adminPrincipal, empPrincipal, name, report); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedPipeline gives one employee an open lead with a logged call, and has
// their admin convert a second lead into a customer.
func seedPipeline(ctx context.Context, c *app.Container, admin, emp *access.Principal, owner string, report *Report) error {
	open, err := c.Leads.Create(ctx, emp, lead.CreateLeadDTO{
		Name:       "Walk-in for " + owner,
		Source:     "website",
		AssignedTo: emp.ID,
	})
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	report.Leads++

	if _, err := c.Communications.Add(ctx, emp, communication.AddCommunicationDTO{
		ParentType: communication.ParentLead,
		ParentID:   open.ID,
		Kind:       communication.KindCall,
		Summary:    "Intro call",
	}); err != nil {
		return fmt.Errorf("log call: %w", err)
	}
	report.Communications++

	won, err := c.Leads.Create(ctx, admin, lead.CreateLeadDTO{
		Name:         "Referral for " + owner,
		Source:       "referral",
		AssignedTo:   emp.ID,
		ServiceTypes: []string{string(access.ServiceTraining), string(access.ServiceWealth)},
	})
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	report.Leads++

	if _, err := c.Customers.ConvertLead(ctx, admin, won.ID, customer.ConvertLeadDTO{Segment: customer.SegmentHNI}); err != nil {
		return fmt.Errorf("convert lead: %w", err)
	}
	report.Customers++
	return nil
}
