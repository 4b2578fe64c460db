package access_test

import (
	"errors"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Permission schema", func() {
	Describe("ParseScope", func() {
		It("accepts every known scope regardless of case and padding", func() {
			for _, raw := range []string{"none", "OWN", " created ", "Assigned", "subordinates", "all"} {
				_, ok := access.ParseScope(raw)
				Expect(ok).To(BeTrue(), raw)
			}
		})

		It("maps unknown input to none", func() {
			sc, ok := access.ParseScope("team")
			Expect(ok).To(BeFalse())
			Expect(sc).To(Equal(access.ScopeNone))
		})
	})

	Describe("AllowedScopes", func() {
		It("does not accept assigned for user accounts", func() {
			Expect(access.AllowedScopes(access.ResourceUser)).NotTo(ContainElement(access.ScopeAssigned))
			Expect(access.ResourceUser.Allows(access.ScopeAssigned)).To(BeFalse())
		})

		It("accepts every scope for leads", func() {
			Expect(access.AllowedScopes(access.ResourceLead)).To(HaveLen(6))
		})
	})

	Describe("DefaultPermissionsFor", func() {
		It("gives developers every scope and flag", func() {
			p := access.DefaultPermissionsFor(access.RoleDeveloper)
			for _, f := range access.ScopeFields() {
				Expect(p.Scope(f)).To(Equal(access.ScopeAll), string(f))
			}
			for _, f := range access.Flags() {
				Expect(p.Has(f)).To(BeTrue(), string(f))
			}
			Expect(p.AllowedServiceTypes).To(ConsistOf(access.AllServiceTypes()))
		})

		It("seeds admins with created leads and subordinate customers", func() {
			p := access.DefaultPermissionsFor(access.RoleAdmin)
			Expect(p.ViewLeads).To(Equal(access.ScopeCreated))
			Expect(p.ViewCustomers).To(Equal(access.ScopeSubordinates))
			Expect(p.CreateEmployee).To(BeTrue())
			Expect(p.CreateAdmin).To(BeFalse())
			Expect(p.ClearSystemData).To(BeFalse())
		})

		It("seeds employees narrowly with one service type", func() {
			p := access.DefaultPermissionsFor(access.RoleEmployee)
			Expect(p.ViewLeads).To(Equal(access.ScopeAssigned))
			Expect(p.ViewCommunications).To(Equal(access.ScopeOwn))
			Expect(p.DeleteLeads).To(Equal(access.ScopeNone))
			Expect(p.CreateEmployee).To(BeFalse())
			Expect(p.DeleteUser).To(BeFalse())
			Expect(p.AllowedServiceTypes).To(Equal(access.ServiceTypes{access.DefaultServiceType}))
		})

		It("falls back to the employee defaults for unknown roles", func() {
			Expect(access.DefaultPermissionsFor(access.Role("auditor"))).To(Equal(access.DefaultPermissionsFor(access.RoleEmployee)))
		})

		It("returns independent copies", func() {
			a := access.DefaultPermissionsFor(access.RoleAdmin)
			a.AllowedServiceTypes[0] = "tampered"
			b := access.DefaultPermissionsFor(access.RoleAdmin)
			Expect(b.AllowedServiceTypes[0]).To(Equal(access.ServiceTraining))
		})

		It("produces sets that pass validation", func() {
			for _, r := range []access.Role{access.RoleDeveloper, access.RoleAdmin, access.RoleEmployee} {
				Expect(access.DefaultPermissionsFor(r).Validate()).To(Succeed())
			}
		})
	})

	Describe("Validate", func() {
		It("reports each invalid field", func() {
			p := access.DefaultPermissionsFor(access.RoleEmployee)
			p.ViewUsers = access.ScopeAssigned
			p.EditLeads = access.Scope("everything")

			err := p.Validate()
			Expect(err).To(HaveOccurred())

			var scopeErr *access.InvalidScopeError
			Expect(errors.As(err, &scopeErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("viewUsers"))
			Expect(err.Error()).To(ContainSubstring("editLeads"))
		})
	})

	Describe("Has and Scope", func() {
		It("treats unknown names as denied", func() {
			p := access.DefaultPermissionsFor(access.RoleDeveloper)
			Expect(p.Has(access.Flag("launchRockets"))).To(BeFalse())
			Expect(p.Scope(access.ScopeField("viewInvoices"))).To(Equal(access.ScopeNone))
		})
	})

	Describe("GrantExceeds", func() {
		admin := &access.Principal{ID: "a1", Role: access.RoleAdmin, Permissions: access.DefaultPermissionsFor(access.RoleAdmin)}
		developer := &access.Principal{ID: "d1", Role: access.RoleDeveloper, Permissions: access.DefaultPermissionsFor(access.RoleDeveloper)}
		employee := access.DefaultPermissionsFor(access.RoleEmployee)

		It("names flags and all scopes the grantor lacks", func() {
			next := employee
			next.ClearSystemData = true
			next.ViewLeads = access.ScopeAll
			next.ViewCustomers = access.ScopeSubordinates
			Expect(access.GrantExceeds(admin, employee, next)).To(ConsistOf("viewLeads", "clearSystemData"))
		})

		It("ignores fields the target already had", func() {
			current := employee
			current.ViewLeads = access.ScopeAll
			current.ClearSystemData = true
			next := current
			next.ViewCustomers = access.ScopeNone
			Expect(access.GrantExceeds(admin, current, next)).To(BeEmpty())
		})

		It("reports service types outside the grantor's own", func() {
			narrow := &access.Principal{ID: "a2", Role: access.RoleAdmin, Permissions: access.DefaultPermissionsFor(access.RoleAdmin)}
			narrow.Permissions.AllowedServiceTypes = access.ServiceTypes{access.ServiceTraining}
			next := employee
			next.AllowedServiceTypes = access.ServiceTypes{access.ServiceTraining, access.ServiceWealth}
			Expect(access.GrantExceeds(narrow, employee, next)).To(ConsistOf("allowedServiceTypes"))
		})

		It("lets the developer grant anything", func() {
			Expect(access.GrantExceeds(developer, employee, access.DefaultPermissionsFor(access.RoleDeveloper))).To(BeEmpty())
		})
	})

	Describe("ServiceTypes", func() {
		It("intersects on a shared tag", func() {
			a := access.ServiceTypes{access.ServiceTraining, access.ServiceEquity}
			Expect(a.Intersects(access.ServiceTypes{access.ServiceEquity})).To(BeTrue())
			Expect(a.Intersects(access.ServiceTypes{access.ServiceWealth})).To(BeFalse())
			Expect(a.Intersects(nil)).To(BeFalse())
		})
	})
})
