package access_test

import (
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Assignable", func() {
	var members []access.Member

	BeforeEach(func() {
		members = append(orgMembers(), access.Member{ID: "e4", Role: access.RoleEmployee, CreatedByAdminID: "a1"})
	})

	It("lets the developer pick any active user", func() {
		d1 := principal("d1", access.RoleDeveloper)
		Expect(access.Assignable(d1, "e2", members)).To(BeTrue())
		Expect(access.Assignable(d1, "a1", members)).To(BeTrue())
		Expect(access.Assignable(d1, "e4", members)).To(BeFalse())
	})

	It("limits admins to themselves and their employees", func() {
		a1 := principal("a1", access.RoleAdmin)
		Expect(access.Assignable(a1, "a1", members)).To(BeTrue())
		Expect(access.Assignable(a1, "e1", members)).To(BeTrue())
		Expect(access.Assignable(a1, "e2", members)).To(BeFalse())
		Expect(access.Assignable(a1, "a2", members)).To(BeFalse())
	})

	It("limits employees to their own team", func() {
		e1 := principal("e1", access.RoleEmployee)
		Expect(access.Assignable(e1, "e1", members)).To(BeTrue())
		Expect(access.Assignable(e1, "e3", members)).To(BeTrue())
		Expect(access.Assignable(e1, "a1", members)).To(BeTrue())
		Expect(access.Assignable(e1, "e2", members)).To(BeFalse())
	})

	It("rejects unknown ids and missing principals", func() {
		Expect(access.Assignable(principal("d1", access.RoleDeveloper), "ghost", members)).To(BeFalse())
		Expect(access.Assignable(nil, "e1", members)).To(BeFalse())
	})
})
