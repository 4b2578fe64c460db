package access_test

import (
	"bytes"
	"log/slog"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Admin filter overlay", func() {
	var (
		ev      *access.Evaluator
		members []access.Member
		leads   []record
		d1      *access.Principal
	)

	BeforeEach(func() {
		ev = quietEvaluator()
		members = orgMembers()
		d1 = principal("d1", access.RoleDeveloper)
		leads = []record{
			lead("l1", "e1", ""),
			lead("l2", "a2", "e2"),
			lead("l3", "a1", ""),
			lead("l4", "d1", "e3"),
			lead("l5", "e2", ""),
			lead("l6", "d1", ""),
		}
	})

	Describe("state", func() {
		It("moves between unfiltered and filtered", func() {
			var f access.AdminFilter
			Expect(f.Active()).To(BeFalse())

			f = f.Select("a1")
			Expect(f.Active()).To(BeTrue())
			Expect(f.AdminID()).To(Equal("a1"))

			f = f.Select("a2")
			Expect(f.AdminID()).To(Equal("a2"))

			f = f.Clear()
			Expect(f.Active()).To(BeFalse())
			Expect(f).To(Equal(access.AdminFilter{}))
		})
	})

	It("narrows a developer listing to the selected admin's team", func() {
		got, err := access.ListVisible(ev, d1, d1.Permissions.ViewLeads, leads, members, access.NewAdminFilter("a1"))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(got)).To(Equal([]string{"l1", "l3", "l4"}))
	})

	It("is the identity without a selection", func() {
		got, err := access.ListVisible(ev, d1, d1.Permissions.ViewLeads, leads, members, access.AdminFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(got)).To(Equal(ids(leads)))
	})

	It("never widens what the base filter returned", func() {
		d1.Permissions.ViewLeads = access.ScopeCreated
		got, err := access.ListVisible(ev, d1, d1.Permissions.ViewLeads, leads, members, access.NewAdminFilter("a1"))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(got)).To(Equal([]string{"l4"}))
	})

	It("is ignored for non-developers", func() {
		a2 := principal("a2", access.RoleAdmin)
		plain, err := access.ListVisible(ev, a2, access.ScopeSubordinates, leads, members, access.AdminFilter{})
		Expect(err).NotTo(HaveOccurred())
		filtered, err := access.ListVisible(ev, a2, access.ScopeSubordinates, leads, members, access.NewAdminFilter("a1"))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(filtered)).To(Equal(ids(plain)))
		Expect(ids(plain)).To(Equal([]string{"l2", "l5"}))
	})

	It("keeps the developer's service type restriction", func() {
		d1.Permissions.AllowedServiceTypes = access.ServiceTypes{access.ServiceTraining}
		typed := []record{
			lead("t1", "e1", "", access.ServiceTraining),
			lead("t2", "e1", "", access.ServiceWealth),
		}
		got, err := access.ApplyOverlay(ev, d1, access.NewAdminFilter("a1"), typed, members)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(got)).To(Equal([]string{"t1"}))
	})

	It("returns nothing and logs when the selection is not an admin", func() {
		var buf bytes.Buffer
		loud := access.NewEvaluator(slog.New(slog.NewTextHandler(&buf, nil)))

		got, err := access.ApplyOverlay(loud, d1, access.NewAdminFilter("e1"), leads, members)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeEmpty())

		got, err = access.ApplyOverlay(loud, d1, access.NewAdminFilter("nobody"), leads, members)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeEmpty())
		Expect(buf.String()).To(ContainSubstring("admin filter"))
	})

	It("narrows user listings to the admin and its employees", func() {
		var accounts []account
		for _, m := range members {
			accounts = append(accounts, account{member: m})
		}
		got, err := access.ListVisible(ev, d1, d1.Permissions.ViewUsers, accounts, members, access.NewAdminFilter("a2"))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(got)).To(Equal([]string{"a2", "e2"}))
	})

	It("exposes the narrowed id set", func() {
		Expect(access.NarrowToAdmin("a1", members).IDs()).To(Equal([]string{"a1", "e1", "e3"}))
	})

	It("errors without a principal", func() {
		_, err := access.ApplyOverlay(ev, nil, access.NewAdminFilter("a1"), leads, members)
		Expect(err).To(MatchError(access.ErrNoPrincipal))
	})
})
