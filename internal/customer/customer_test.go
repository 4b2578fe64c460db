package customer_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	customerDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/customer"
	leadDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/lead"
	"github.com/Beamwelly/CRM-Application-sub001/internal/customer"
	customerPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/customer/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/lead"
	leadPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/lead/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCustomer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Customer Suite")
}

type staticMembers []access.Member

func (s staticMembers) ListMembers(context.Context) ([]access.Member, error) {
	return s, nil
}

func principal(id string, role access.Role) *access.Principal {
	return &access.Principal{ID: id, Role: role, Permissions: access.DefaultPermissionsFor(role)}
}

func names(customers []*customer.Customer) []string {
	out := make([]string, len(customers))
	for i, c := range customers {
		out[i] = c.Name
	}
	return out
}

var _ = Describe("Customer service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		repo     *customerPostgres.CustomerRepository
		leadRepo *leadPostgres.LeadRepository
		leads    *lead.Service
		service  *customer.Service
		memberDB staticMembers

		d1, a1, a2, e1, e2 *access.Principal
	)

	create := func(p *access.Principal, dto customer.CreateCustomerDTO) *customer.Customer {
		c, err := service.Create(ctx, p, dto)
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&leadDatamodel.Lead{}, &customerDatamodel.Customer{})).To(Succeed())

		memberDB = staticMembers{
			{ID: "d1", Role: access.RoleDeveloper, Active: true},
			{ID: "a1", Role: access.RoleAdmin, Active: true},
			{ID: "a2", Role: access.RoleAdmin, Active: true},
			{ID: "e1", Role: access.RoleEmployee, CreatedByAdminID: "a1", Active: true},
			{ID: "e2", Role: access.RoleEmployee, CreatedByAdminID: "a2", Active: true},
			{ID: "e3", Role: access.RoleEmployee, CreatedByAdminID: "a1", Active: true},
		}

		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		ev := access.NewEvaluator(quiet)
		repo = customerPostgres.NewCustomerRepository(db)
		leadRepo = leadPostgres.NewLeadRepository(db)
		leads = lead.NewService(leadRepo, memberDB, nil, ev, nil, quiet)
		service = customer.NewService(repo, leads, memberDB, nil, ev, nil, quiet)

		d1 = principal("d1", access.RoleDeveloper)
		a1 = principal("a1", access.RoleAdmin)
		a2 = principal("a2", access.RoleAdmin)
		e1 = principal("e1", access.RoleEmployee)
		e2 = principal("e2", access.RoleEmployee)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("visibility", func() {
		var c3 *customer.Customer

		BeforeEach(func() {
			create(a1, customer.CreateCustomerDTO{Name: "C1", AssignedTo: "e1"})
			create(a2, customer.CreateCustomerDTO{Name: "C2", AssignedTo: "e2", Segment: customer.SegmentHNI})
			c3 = create(d1, customer.CreateCustomerDTO{Name: "C3", AssignedTo: "e3"})
		})

		It("gives admins their own and their team's customers", func() {
			visible, err := service.List(ctx, a1, access.AdminFilter{}, customer.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(names(visible)).To(Equal([]string{"C1", "C3"}))
		})

		It("gives employees their assigned customers", func() {
			visible, err := service.List(ctx, e1, access.AdminFilter{}, customer.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(names(visible)).To(Equal([]string{"C1"}))
		})

		It("narrows the developer listing to the selected admin", func() {
			visible, err := service.List(ctx, d1, access.NewAdminFilter("a1"), customer.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(names(visible)).To(Equal([]string{"C1", "C3"}))

			visible, err = service.List(ctx, d1, access.AdminFilter{}, customer.ListQuery{Segment: customer.SegmentHNI})
			Expect(err).NotTo(HaveOccurred())
			Expect(names(visible)).To(Equal([]string{"C2"}))
		})

		It("lets admins edit team customers but only delete their own", func() {
			notes := "called back"
			_, err := service.Update(ctx, a1, c3.ID, customer.UpdateCustomerDTO{Notes: &notes})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, a1, c3.ID)).To(MatchError(access.ErrPermissionDenied))
			Expect(service.Delete(ctx, a2, c3.ID)).To(MatchError(access.ErrNotVisible))
			Expect(service.Delete(ctx, d1, c3.ID)).To(Succeed())
		})

		It("reassigns within the admin's team", func() {
			moved, err := service.Assign(ctx, a1, c3.ID, "e1")
			Expect(err).NotTo(HaveOccurred())
			Expect(moved.AssignedTo).To(Equal("e1"))

			got, err := service.Get(ctx, e1, c3.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("C3"))

			_, err = service.Assign(ctx, a1, c3.ID, "e2")
			Expect(err).To(MatchError(internal.ErrAssigneeNotFound))
		})

		It("answers not found outside the caller's scope", func() {
			_, err := service.Get(ctx, e2, c3.ID)
			Expect(err).To(MatchError(internal.ErrNotFound))
		})

		It("does not let an edit read before a reassignment restore the old assignee", func() {
			stale, err := repo.GetByID(ctx, c3.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Assign(ctx, a1, c3.ID, "e1")
			Expect(err).NotTo(HaveOccurred())

			stale.Notes = "edited from an old copy"
			Expect(repo.Update(ctx, stale)).To(MatchError(customer.ErrChanged))

			got, err := repo.GetByID(ctx, c3.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AssignedTo).To(Equal("e1"))
			Expect(got.Notes).To(BeEmpty())

			_, err = service.Get(ctx, principal("e3", access.RoleEmployee), c3.ID)
			Expect(err).To(MatchError(internal.ErrNotFound))
		})

		It("refuses a reassignment from an assignee that is no longer current", func() {
			stale, err := repo.GetByID(ctx, c3.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Assign(ctx, a1, c3.ID, "e1")
			Expect(err).NotTo(HaveOccurred())

			from := stale.AssignedTo
			stale.AssignedTo = ""
			Expect(repo.Assign(ctx, stale, from)).To(MatchError(customer.ErrChanged))

			missing := &customer.Customer{ID: "missing"}
			Expect(repo.Assign(ctx, missing, "")).To(MatchError(customer.ErrNotFound))
		})
	})

	Describe("Create", func() {
		It("needs createCustomers", func() {
			_, err := service.Create(ctx, e1, customer.CreateCustomerDTO{Name: "C"})
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})

		It("defaults the segment and rejects unknown ones", func() {
			c := create(a1, customer.CreateCustomerDTO{Name: "C"})
			Expect(c.Segment).To(Equal(customer.SegmentRetail))

			_, err := service.Create(ctx, a1, customer.CreateCustomerDTO{Name: "C", Segment: "vip"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("ConvertLead", func() {
		var source *lead.Lead

		BeforeEach(func() {
			var err error
			source, err = leads.Create(ctx, a1, lead.CreateLeadDTO{Name: "Priya", Email: "priya@example.com", AssignedTo: "e1", Notes: "met at expo"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("copies the lead and marks it converted", func() {
			c, err := service.ConvertLead(ctx, a1, source.ID, customer.ConvertLeadDTO{Segment: customer.SegmentHNI})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.LeadID).To(Equal(source.ID))
			Expect(c.Name).To(Equal("Priya"))
			Expect(c.Email).To(Equal("priya@example.com"))
			Expect(c.AssignedTo).To(Equal("e1"))
			Expect(c.Notes).To(Equal("met at expo"))
			Expect(c.ServiceTypes).To(Equal(source.ServiceTypes))

			l, err := leads.Get(ctx, a1, source.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Status).To(Equal(lead.StatusConverted))
			Expect(l.ConvertedCustomerID).To(Equal(c.ID))

			_, err = service.ConvertLead(ctx, a1, source.ID, customer.ConvertLeadDTO{})
			Expect(err).To(MatchError(internal.ErrLeadAlreadyConverted))
		})

		It("refuses a second conversion racing past the check", func() {
			first := &customer.Customer{ID: "c-1", Name: "Priya", Segment: customer.SegmentRetail, CreatedBy: "a1", LeadID: source.ID}
			Expect(repo.CreateFromLead(ctx, first)).To(Succeed())

			second := &customer.Customer{ID: "c-2", Name: "Priya", Segment: customer.SegmentRetail, CreatedBy: "a1", LeadID: source.ID}
			Expect(repo.CreateFromLead(ctx, second)).To(MatchError(customer.ErrLeadConverted))

			_, err := repo.GetByID(ctx, "c-2")
			Expect(err).To(MatchError(customer.ErrNotFound))
		})

		It("keeps a conversion that lands between reading and saving a lead edit", func() {
			stale, err := leadRepo.GetByID(ctx, source.ID)
			Expect(err).NotTo(HaveOccurred())

			first := &customer.Customer{ID: "c-1", Name: "Priya", Segment: customer.SegmentRetail, CreatedBy: "a1", LeadID: source.ID}
			Expect(repo.CreateFromLead(ctx, first)).To(Succeed())

			stale.Name = "Priya S"
			Expect(leadRepo.Update(ctx, stale)).To(MatchError(lead.ErrChanged))

			l, err := leadRepo.GetByID(ctx, source.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Status).To(Equal(lead.StatusConverted))
			Expect(l.ConvertedCustomerID).To(Equal("c-1"))
			Expect(l.Name).To(Equal("Priya"))

			second := &customer.Customer{ID: "c-2", Name: "Priya", Segment: customer.SegmentRetail, CreatedBy: "a1", LeadID: source.ID}
			Expect(repo.CreateFromLead(ctx, second)).To(MatchError(customer.ErrLeadConverted))
		})

		It("needs createCustomers and the lead's edit scope", func() {
			_, err := service.ConvertLead(ctx, e1, source.ID, customer.ConvertLeadDTO{})
			Expect(err).To(MatchError(internal.ErrPermissionDenied))

			_, err = service.ConvertLead(ctx, a2, source.ID, customer.ConvertLeadDTO{})
			Expect(err).To(MatchError(access.ErrNotVisible))
		})

		It("is exposed over HTTP", func() {
			handler := customer.NewHandler(service, nil)
			router := chi.NewRouter()
			router.Post("/leads/{id}/convert", handler.ConvertLead)

			req := httptest.NewRequest(http.MethodPost, "/leads/"+source.ID+"/convert", strings.NewReader(`{"segment":"hni"}`))
			req = req.WithContext(internal.ContextWithPrincipal(req.Context(), a1))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			req = httptest.NewRequest(http.MethodPost, "/leads/"+source.ID+"/convert", nil)
			req = req.WithContext(internal.ContextWithPrincipal(req.Context(), a1))
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})
	})
})
