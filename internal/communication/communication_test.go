package communication_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/communication"
	communicationPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/communication/postgres"
	communicationDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/communication"
	customerDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/customer"
	leadDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/lead"
	"github.com/Beamwelly/CRM-Application-sub001/internal/customer"
	customerPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/customer/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/lead"
	leadPostgres "github.com/Beamwelly/CRM-Application-sub001/internal/lead/postgres"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCommunication(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Communication Suite")
}

type staticMembers []access.Member

func (s staticMembers) ListMembers(context.Context) ([]access.Member, error) {
	return s, nil
}

func principal(id string, role access.Role) *access.Principal {
	return &access.Principal{ID: id, Role: role, Permissions: access.DefaultPermissionsFor(role)}
}

func summaries(entries []*communication.Communication) []string {
	out := make([]string, len(entries))
	for i, c := range entries {
		out[i] = c.Summary
	}
	return out
}

var _ = Describe("Communication service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *communication.Service
		metrics *observability.Metrics
		l1      *lead.Lead
		c1      *customer.Customer
		call    *communication.Communication

		d1, a1, a2, e1, e2 *access.Principal
	)

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
		Expect(db.AutoMigrate(&leadDatamodel.Lead{}, &customerDatamodel.Customer{}, &communicationDatamodel.Communication{})).To(Succeed())

		members := staticMembers{
			{ID: "d1", Role: access.RoleDeveloper, Active: true},
			{ID: "a1", Role: access.RoleAdmin, Active: true},
			{ID: "a2", Role: access.RoleAdmin, Active: true},
			{ID: "e1", Role: access.RoleEmployee, CreatedByAdminID: "a1", Active: true},
			{ID: "e2", Role: access.RoleEmployee, CreatedByAdminID: "a2", Active: true},
		}
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		ev := access.NewEvaluator(quiet)
		metrics = observability.NewMetrics()

		leads := lead.NewService(leadPostgres.NewLeadRepository(db), members, nil, ev, nil, quiet)
		customers := customer.NewService(customerPostgres.NewCustomerRepository(db), leads, members, nil, ev, nil, quiet)
		service = communication.NewService(
			communicationPostgres.NewCommunicationRepository(db),
			members,
			map[string]communication.ParentResolver{
				communication.ParentLead:     leads,
				communication.ParentCustomer: customers,
			},
			ev, metrics, quiet,
		)

		d1 = principal("d1", access.RoleDeveloper)
		a1 = principal("a1", access.RoleAdmin)
		a2 = principal("a2", access.RoleAdmin)
		e1 = principal("e1", access.RoleEmployee)
		e2 = principal("e2", access.RoleEmployee)

		l1, err = leads.Create(ctx, a1, lead.CreateLeadDTO{Name: "L1", AssignedTo: "e1"})
		Expect(err).NotTo(HaveOccurred())
		c1, err = customers.Create(ctx, a1, customer.CreateCustomerDTO{Name: "C1", AssignedTo: "e1"})
		Expect(err).NotTo(HaveOccurred())

		at := time.Now().Add(-time.Hour)
		call, err = service.Add(ctx, e1, communication.AddCommunicationDTO{
			ParentType:   communication.ParentLead,
			ParentID:     l1.ID,
			Kind:         communication.KindCall,
			Summary:      "intro call",
			RecordingURL: "https://recordings.example.com/r/1.mp3",
			OccurredAt:   &at,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Add", func() {
		It("inherits the parent's service types", func() {
			Expect(call.CreatedBy).To(Equal("e1"))
			Expect(call.ServiceTypes).To(Equal(l1.ServiceTypes))

			note, err := service.Add(ctx, e1, communication.AddCommunicationDTO{
				ParentType: communication.ParentCustomer,
				ParentID:   c1.ID,
				Kind:       communication.KindNote,
				Summary:    "prefers email",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(note.ServiceTypes).To(Equal(c1.ServiceTypes))
		})

		It("hides invisible parents", func() {
			_, err := service.Add(ctx, e2, communication.AddCommunicationDTO{
				ParentType: communication.ParentLead,
				ParentID:   l1.ID,
				Kind:       communication.KindNote,
			})
			Expect(err).To(MatchError(internal.ErrNotFound))
		})

		It("needs addCommunications", func() {
			p := principal("e1", access.RoleEmployee)
			p.Permissions.AddCommunications = false
			_, err := service.Add(ctx, p, communication.AddCommunicationDTO{
				ParentType: communication.ParentLead,
				ParentID:   l1.ID,
				Kind:       communication.KindNote,
			})
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})

		It("validates kind and parent type", func() {
			_, err := service.Add(ctx, e1, communication.AddCommunicationDTO{
				ParentType: "invoice",
				ParentID:   l1.ID,
				Kind:       "fax",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("List", func() {
		It("applies viewCommunications", func() {
			for _, tc := range []struct {
				p    *access.Principal
				want []string
			}{
				{e1, []string{"intro call"}},
				{a1, []string{"intro call"}},
				{d1, []string{"intro call"}},
				{e2, []string{}},
				{a2, []string{}},
			} {
				visible, err := service.List(ctx, tc.p, access.AdminFilter{}, communication.ListQuery{})
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries(visible)).To(Equal(tc.want), tc.p.ID)
			}
		})

		It("narrows the developer listing to the selected admin", func() {
			visible, err := service.List(ctx, d1, access.NewAdminFilter("a2"), communication.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(visible).To(BeEmpty())
		})

		It("requires the parent to be visible when filtering by parent", func() {
			visible, err := service.List(ctx, a1, access.AdminFilter{}, communication.ListQuery{ParentType: communication.ParentLead, ParentID: l1.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(visible).To(HaveLen(1))

			_, err = service.List(ctx, e2, access.AdminFilter{}, communication.ListQuery{ParentType: communication.ParentLead, ParentID: l1.ID})
			Expect(err).To(MatchError(internal.ErrNotFound))
		})
	})

	Describe("recordings", func() {
		It("plays recordings for callers who see the entry", func() {
			rec, err := service.PlayRecording(ctx, e1, call.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.URL).To(Equal("https://recordings.example.com/r/1.mp3"))
			Expect(rec.Disposition).To(Equal("inline"))

			_, err = service.PlayRecording(ctx, e2, call.ID)
			Expect(err).To(MatchError(access.ErrNotVisible))
			Expect(metrics.DecisionCount("communication", "playRecordings", observability.OutcomeNotVisible)).To(Equal(1.0))
		})

		It("needs downloadRecordings to download", func() {
			_, err := service.DownloadRecording(ctx, e1, call.ID)
			Expect(err).To(MatchError(access.ErrPermissionDenied))

			rec, err := service.DownloadRecording(ctx, a1, call.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Disposition).To(Equal("attachment"))
		})

		It("answers not found for entries without a recording", func() {
			note, err := service.Add(ctx, e1, communication.AddCommunicationDTO{
				ParentType: communication.ParentLead,
				ParentID:   l1.ID,
				Kind:       communication.KindNote,
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.PlayRecording(ctx, e1, note.ID)
			Expect(err).To(MatchError(internal.ErrNotFound))
		})

		It("maps denials to HTTP statuses", func() {
			handler := communication.NewHandler(service, nil)
			router := chi.NewRouter()
			router.Get("/communications/{id}/recording", handler.PlayRecording)
			router.Get("/communications/{id}/recording/download", handler.DownloadRecording)

			serve := func(p *access.Principal, path string) int {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				req = req.WithContext(internal.ContextWithPrincipal(req.Context(), p))
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)
				return rec.Code
			}

			Expect(serve(e1, "/communications/"+call.ID+"/recording")).To(Equal(http.StatusOK))
			Expect(serve(e1, "/communications/"+call.ID+"/recording/download")).To(Equal(http.StatusForbidden))
			Expect(serve(e2, "/communications/"+call.ID+"/recording")).To(Equal(http.StatusNotFound))
		})
	})
})
