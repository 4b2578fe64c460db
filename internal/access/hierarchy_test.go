package access_test

import (
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Hierarchy resolver", func() {
	It("returns only the admin's own employees", func() {
		members := []access.Member{
			{ID: "a1", Role: access.RoleAdmin},
			{ID: "e1", Role: access.RoleEmployee, CreatedByAdminID: "a1"},
			{ID: "e2", Role: access.RoleEmployee, CreatedByAdminID: "a2"},
		}

		subs := access.SubordinateEmployeeIDs("a1", members)
		Expect(subs.IDs()).To(Equal([]string{"e1"}))
	})

	It("marks every employee of an admin as its subordinate and nobody else", func() {
		members := orgMembers()
		for _, m := range members {
			if m.Role != access.RoleEmployee {
				continue
			}
			Expect(access.IsSubordinateOf(m.ID, m.CreatedByAdminID, members)).To(BeTrue(), m.ID)
			for _, admin := range access.AdminIDs(members) {
				if admin != m.CreatedByAdminID {
					Expect(access.IsSubordinateOf(m.ID, admin, members)).To(BeFalse(), m.ID+" under "+admin)
				}
			}
		}
	})

	It("never treats an admin as its own subordinate", func() {
		Expect(access.IsSubordinateOf("a1", "a1", orgMembers())).To(BeFalse())
		Expect(access.SubordinateEmployeeIDs("a1", orgMembers()).Has("a1")).To(BeFalse())
	})

	It("never places a developer or admin under anyone", func() {
		members := append(orgMembers(),
			access.Member{ID: "d2", Role: access.RoleDeveloper, CreatedByAdminID: "a1"},
			access.Member{ID: "a3", Role: access.RoleAdmin, CreatedByAdminID: "a1"},
		)
		subs := access.SubordinateEmployeeIDs("a1", members)
		Expect(subs.Has("d2")).To(BeFalse())
		Expect(subs.Has("a3")).To(BeFalse())
	})

	It("treats a self-referencing employee as having no admin", func() {
		members := []access.Member{
			{ID: "a1", Role: access.RoleAdmin},
			{ID: "x", Role: access.RoleEmployee, CreatedByAdminID: "x"},
		}
		Expect(access.SubordinateEmployeeIDs("x", members).Len()).To(Equal(0))
		Expect(access.SubordinateEmployeeIDs("a1", members).Len()).To(Equal(0))
	})

	It("returns an empty set for an empty admin id", func() {
		members := []access.Member{{ID: "e0", Role: access.RoleEmployee}}
		Expect(access.SubordinateEmployeeIDs("", members).Len()).To(Equal(0))
	})

	Describe("CheckIntegrity", func() {
		It("reports self references, missing creators and non-admin creators", func() {
			members := []access.Member{
				{ID: "a1", Role: access.RoleAdmin},
				{ID: "d1", Role: access.RoleDeveloper},
				{ID: "e1", Role: access.RoleEmployee, CreatedByAdminID: "a1"},
				{ID: "e2", Role: access.RoleEmployee, CreatedByAdminID: "e2"},
				{ID: "e3", Role: access.RoleEmployee, CreatedByAdminID: "ghost"},
				{ID: "e4", Role: access.RoleEmployee, CreatedByAdminID: "d1"},
				{ID: "e5", Role: access.RoleEmployee},
			}

			issues := access.CheckIntegrity(members)
			kinds := map[string]access.IssueKind{}
			for _, i := range issues {
				kinds[i.MemberID] = i.Kind
			}

			Expect(kinds).To(Equal(map[string]access.IssueKind{
				"e2": access.IssueSelfReference,
				"e3": access.IssueMissingCreator,
				"e4": access.IssueCreatorNotAdmin,
			}))
		})

		It("reports admins that claim a creator", func() {
			members := []access.Member{
				{ID: "a1", Role: access.RoleAdmin},
				{ID: "a2", Role: access.RoleAdmin, CreatedByAdminID: "a1"},
			}
			issues := access.CheckIntegrity(members)
			Expect(issues).To(HaveLen(1))
			Expect(issues[0].Kind).To(Equal(access.IssueUnexpectedOwner))
		})
	})
})
