package access_test

import (
	"bytes"
	"log/slog"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scope evaluator", func() {
	var (
		ev      *access.Evaluator
		members []access.Member
		pool    []record
	)

	BeforeEach(func() {
		ev = quietEvaluator()
		members = orgMembers()
		pool = []record{
			lead("l1", "e1", "", access.ServiceTraining),
			lead("l2", "e1", "e1", access.ServiceTraining),
			lead("l3", "a1", "e3"),
			lead("l4", "e2", "e2", access.ServiceWealth),
			lead("l5", "", ""),
			lead("l6", "a2", "e1", access.ServiceEquity, access.ServiceTraining),
		}
	})

	can := func(p *access.Principal, scope access.Scope, r record) bool {
		ok, err := ev.CanAccess(p, scope, r.Ownership(), access.ContextFor(p, members))
		Expect(err).NotTo(HaveOccurred())
		return ok
	}

	Describe("properties over the whole pool", func() {
		It("denies everything under none", func() {
			for _, m := range members {
				p := principal(m.ID, m.Role)
				for _, r := range pool {
					Expect(can(p, access.ScopeNone, r)).To(BeFalse(), m.ID+"/"+r.id)
				}
			}
		})

		It("allows everything under all when service types intersect", func() {
			p := principal("d1", access.RoleDeveloper)
			for _, r := range pool {
				Expect(can(p, access.ScopeAll, r)).To(BeTrue(), r.id)
			}
		})

		It("matches assigned exactly on the assignee", func() {
			for _, m := range members {
				p := principal(m.ID, m.Role)
				p.Permissions.AllowedServiceTypes = access.AllServiceTypes()
				for _, r := range pool {
					expected := r.o.AssignedTo != "" && r.o.AssignedTo == m.ID
					Expect(can(p, access.ScopeAssigned, r)).To(Equal(expected), m.ID+"/"+r.id)
				}
			}
		})

		It("matches own and created on the creator", func() {
			p := principal("e1", access.RoleEmployee)
			Expect(can(p, access.ScopeOwn, pool[0])).To(BeTrue())
			Expect(can(p, access.ScopeCreated, pool[0])).To(BeTrue())
			Expect(can(p, access.ScopeOwn, pool[2])).To(BeFalse())
		})

		It("never matches missing ownership fields", func() {
			p := &access.Principal{ID: "", Role: access.RoleEmployee, Permissions: access.DefaultPermissionsFor(access.RoleDeveloper)}
			for _, sc := range []access.Scope{access.ScopeOwn, access.ScopeCreated, access.ScopeAssigned, access.ScopeSubordinates} {
				Expect(can(p, sc, pool[4])).To(BeFalse(), string(sc))
			}
		})
	})

	Describe("documented scenarios", func() {
		It("does not treat created as assigned", func() {
			e1 := principal("e1", access.RoleEmployee)
			Expect(can(e1, access.ScopeAssigned, pool[0])).To(BeFalse())
		})

		It("lets an admin see a subordinate's lead", func() {
			a1 := principal("a1", access.RoleAdmin)
			Expect(can(a1, access.ScopeSubordinates, pool[0])).To(BeTrue())
		})

		It("denies on service type mismatch even under all", func() {
			u := principal("x", access.RoleEmployee)
			u.Permissions.ViewLeads = access.ScopeAll
			wealth := lead("w", "e2", "", access.ServiceWealth)
			Expect(can(u, u.Permissions.ViewLeads, wealth)).To(BeFalse())
		})
	})

	Describe("subordinates", func() {
		It("covers the admin's own records and records handled by its team", func() {
			a1 := principal("a1", access.RoleAdmin)
			Expect(can(a1, access.ScopeSubordinates, pool[2])).To(BeTrue())  // created by a1
			Expect(can(a1, access.ScopeSubordinates, pool[5])).To(BeTrue())  // assigned to e1
			Expect(can(a1, access.ScopeSubordinates, pool[3])).To(BeFalse()) // a2's team
		})

		It("gives employees and developers no team", func() {
			e1 := principal("e1", access.RoleEmployee)
			Expect(can(e1, access.ScopeSubordinates, pool[3])).To(BeFalse())

			d1 := principal("d1", access.RoleDeveloper)
			Expect(can(d1, access.ScopeSubordinates, pool[0])).To(BeFalse())
		})
	})

	Describe("user accounts", func() {
		self := func(m access.Member) access.Ownership {
			return account{member: m}.Ownership()
		}

		It("lets an admin see itself and its employees under subordinates", func() {
			a1 := principal("a1", access.RoleAdmin)
			ec := access.ContextFor(a1, members)
			var seen []string
			for _, m := range members {
				ok, err := ev.CanAccess(a1, access.ScopeSubordinates, self(m), ec)
				Expect(err).NotTo(HaveOccurred())
				if ok {
					seen = append(seen, m.ID)
				}
			}
			Expect(seen).To(ConsistOf("a1", "e1", "e3"))
		})

		It("lets anyone see their own account under own", func() {
			e2 := principal("e2", access.RoleEmployee)
			ok, err := ev.CanAccess(e2, access.ScopeOwn, self(members[4]), access.EvalContext{})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("rejects assigned for user accounts", func() {
			a1 := principal("a1", access.RoleAdmin)
			ok, err := ev.CanAccess(a1, access.ScopeAssigned, self(members[3]), access.ContextFor(a1, members))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("malformed input", func() {
		It("fails closed and logs an unrecognized scope", func() {
			var buf bytes.Buffer
			loud := access.NewEvaluator(slog.New(slog.NewTextHandler(&buf, nil)))
			d1 := principal("d1", access.RoleDeveloper)

			ok, err := loud.CanAccess(d1, access.Scope("everyone"), pool[0].Ownership(), access.EvalContext{})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(buf.String()).To(ContainSubstring("unrecognized scope"))
		})

		It("errors on a nil principal", func() {
			_, err := ev.CanAccess(nil, access.ScopeAll, pool[0].Ownership(), access.EvalContext{})
			Expect(err).To(MatchError(access.ErrNoPrincipal))
		})
	})

	Describe("Authorize", func() {
		It("reports invisible entities as not visible", func() {
			e1 := principal("e1", access.RoleEmployee)
			err := ev.Authorize(e1, e1.Permissions.ViewLeads, e1.Permissions.EditLeads, pool[3].Ownership(), access.ContextFor(e1, members))
			Expect(err).To(MatchError(access.ErrNotVisible))
		})

		It("reports visible but protected entities as denied", func() {
			e1 := principal("e1", access.RoleEmployee)
			err := ev.Authorize(e1, e1.Permissions.ViewLeads, e1.Permissions.DeleteLeads, pool[1].Ownership(), access.ContextFor(e1, members))
			Expect(err).To(MatchError(access.ErrPermissionDenied))
		})

		It("passes when both scopes allow", func() {
			e1 := principal("e1", access.RoleEmployee)
			Expect(ev.Authorize(e1, e1.Permissions.ViewLeads, e1.Permissions.EditLeads, pool[1].Ownership(), access.ContextFor(e1, members))).To(Succeed())
		})

		It("checks flags only on visible entities", func() {
			e1 := principal("e1", access.RoleEmployee)
			ec := access.ContextFor(e1, members)
			Expect(ev.AuthorizeFlag(e1, access.ScopeAssigned, access.FlagAssignLeads, pool[1].Ownership(), ec)).To(MatchError(access.ErrPermissionDenied))
			Expect(ev.AuthorizeFlag(e1, access.ScopeAssigned, access.FlagPlayRecordings, pool[3].Ownership(), ec)).To(MatchError(access.ErrNotVisible))
			Expect(ev.AuthorizeFlag(e1, access.ScopeAssigned, access.FlagPlayRecordings, pool[1].Ownership(), ec)).To(Succeed())
		})
	})

	Describe("Allowed", func() {
		It("reads the flag from the principal", func() {
			ok, err := ev.Allowed(principal("a1", access.RoleAdmin), access.FlagCreateAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			ok, err = ev.Allowed(principal("d1", access.RoleDeveloper), access.FlagCreateAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})
})
