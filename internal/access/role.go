package access

import "strings"

// Role is the authorization tier of a user. Only these three values take part
// in access decisions.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
	RoleEmployee  Role = "employee"
)

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r, true
	}
	return RoleEmployee, false
}

func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Position is a descriptive job title. It is stored and displayed but never
// consulted by the evaluator.
type Position string

const (
	PositionRelationshipManager Position = "relationship_manager"
	PositionAccountant          Position = "accountant"
	PositionTrainer             Position = "trainer"
	PositionSalesExecutive      Position = "sales_executive"
	PositionOperations          Position = "operations"
)
