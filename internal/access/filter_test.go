package access_test

import (
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Visibility filter", func() {
	var (
		ev      *access.Evaluator
		members []access.Member
		leads   []record
	)

	BeforeEach(func() {
		ev = quietEvaluator()
		members = orgMembers()
		leads = []record{
			lead("l1", "e1", "", access.ServiceTraining),
			lead("l2", "a2", "e2", access.ServiceWealth),
			lead("l3", "a1", "e3", access.ServiceTraining),
			lead("l4", "e2", "e1", access.ServiceTraining),
			lead("l5", "d1", "", access.ServiceInsurance),
		}
	})

	It("keeps input order and returns only matches", func() {
		a1 := principal("a1", access.RoleAdmin)
		got, err := access.VisibleEntities(ev, a1, access.ScopeSubordinates, leads, access.ContextFor(a1, members))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(got)).To(Equal([]string{"l1", "l3", "l4"}))
	})

	It("is idempotent", func() {
		e1 := principal("e1", access.RoleEmployee)
		ec := access.ContextFor(e1, members)
		once, err := access.VisibleEntities(ev, e1, access.ScopeAssigned, leads, ec)
		Expect(err).NotTo(HaveOccurred())
		twice, err := access.VisibleEntities(ev, e1, access.ScopeAssigned, once, ec)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(twice)).To(Equal(ids(once)))
		Expect(ids(once)).To(Equal([]string{"l4"}))
	})

	It("does not modify the input", func() {
		before := ids(leads)
		d1 := principal("d1", access.RoleDeveloper)
		_, err := access.VisibleEntities(ev, d1, access.ScopeCreated, leads, access.EvalContext{})
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(leads)).To(Equal(before))
	})

	It("returns an empty, non-nil slice for none", func() {
		d1 := principal("d1", access.RoleDeveloper)
		got, err := access.VisibleEntities(ev, d1, access.ScopeNone, leads, access.EvalContext{})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).NotTo(BeNil())
		Expect(got).To(BeEmpty())
	})

	It("returns nothing for an unrecognized scope", func() {
		d1 := principal("d1", access.RoleDeveloper)
		got, err := access.VisibleEntities(ev, d1, access.Scope("team"), leads, access.EvalContext{})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeEmpty())
	})

	It("applies service type gating inside listings", func() {
		d1 := principal("d1", access.RoleDeveloper)
		d1.Permissions.AllowedServiceTypes = access.ServiceTypes{access.ServiceTraining}
		got, err := access.VisibleEntities(ev, d1, access.ScopeAll, leads, access.EvalContext{})
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(got)).To(Equal([]string{"l1", "l3", "l4"}))
	})

	It("errors without a principal", func() {
		_, err := access.VisibleEntities(ev, nil, access.ScopeAll, leads, access.EvalContext{})
		Expect(err).To(MatchError(access.ErrNoPrincipal))
	})

	Describe("user listings", func() {
		var accounts []account

		BeforeEach(func() {
			for _, m := range members {
				accounts = append(accounts, account{member: m})
			}
		})

		AfterEach(func() {
			accounts = nil
		})

		It("shows a developer everyone", func() {
			d1 := principal("d1", access.RoleDeveloper)
			got, err := access.ListVisible(ev, d1, d1.Permissions.ViewUsers, accounts, members, access.AdminFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(len(members)))
		})

		It("shows an admin itself and its employees", func() {
			a1 := principal("a1", access.RoleAdmin)
			got, err := access.ListVisible(ev, a1, a1.Permissions.ViewUsers, accounts, members, access.AdminFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(got)).To(Equal([]string{"a1", "e1", "e3"}))
		})

		It("shows an employee only itself", func() {
			e2 := principal("e2", access.RoleEmployee)
			got, err := access.ListVisible(ev, e2, e2.Permissions.ViewUsers, accounts, members, access.AdminFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(got)).To(Equal([]string{"e2"}))
		})
	})
})
