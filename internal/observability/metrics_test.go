package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestObservability(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Observability Suite")
}

var _ = Describe("Metrics", func() {
	var m *observability.Metrics

	BeforeEach(func() {
		m = observability.NewMetrics()
	})

	It("classifies access outcomes", func() {
		m.RecordOutcome("lead", "edit", nil)
		m.RecordOutcome("lead", "edit", access.ErrPermissionDenied)
		m.RecordOutcome("lead", "edit", access.ErrNotVisible)
		m.RecordOutcome("lead", "edit", errors.New("db down"))

		Expect(m.DecisionCount("lead", "edit", observability.OutcomeAllowed)).To(Equal(1.0))
		Expect(m.DecisionCount("lead", "edit", observability.OutcomeDenied)).To(Equal(1.0))
		Expect(m.DecisionCount("lead", "edit", observability.OutcomeNotVisible)).To(Equal(1.0))
	})

	It("is safe to use without a registry", func() {
		var none *observability.Metrics
		Expect(func() { none.RecordDecision("lead", "view", "allowed") }).NotTo(Panic())
		Expect(none.DecisionCount("lead", "view", "allowed")).To(BeZero())
	})

	It("exposes counters over http", func() {
		m.RecordDecision("customer", "create", observability.OutcomeAllowed)
		m.RecordListing("customer", 4, 1)

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		body, _ := io.ReadAll(rec.Body)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring(`crm_access_decisions_total{action="create",outcome="allowed",resource="customer"} 1`))
		Expect(string(body)).To(ContainSubstring("crm_visibility_filtered_ratio"))
	})
})
