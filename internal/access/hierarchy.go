package access

import (
	"fmt"
	"sort"
)

// Member is the engine's view of a user account: enough to place it in the
// organisational hierarchy.
type Member struct {
	ID               string
	Role             Role
	CreatedByAdminID string
	Active           bool
}

// creator returns the admin that created m, or "" for self-referencing rows.
func (m Member) creator() string {
	if m.CreatedByAdminID == m.ID {
		return ""
	}
	return m.CreatedByAdminID
}

// SubordinateSet is a set of user ids.
type SubordinateSet map[string]struct{}

func NewSubordinateSet(ids ...string) SubordinateSet {
	s := make(SubordinateSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports membership. The empty id is never a member.
func (s SubordinateSet) Has(id string) bool {
	if id == "" {
		return false
	}
	_, ok := s[id]
	return ok
}

func (s SubordinateSet) Len() int {
	return len(s)
}

// IDs returns the members in ascending order.
func (s SubordinateSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SubordinateEmployeeIDs returns the employees created by adminID. Admins and
// developers are never subordinates, and an account never subordinates itself.
func SubordinateEmployeeIDs(adminID string, members []Member) SubordinateSet {
	set := make(SubordinateSet)
	if adminID == "" {
		return set
	}
	for _, m := range members {
		if m.Role != RoleEmployee || m.ID == adminID {
			continue
		}
		if m.creator() == adminID {
			set[m.ID] = struct{}{}
		}
	}
	return set
}

func IsSubordinateOf(candidateID, adminID string, members []Member) bool {
	if candidateID == "" || candidateID == adminID {
		return false
	}
	return SubordinateEmployeeIDs(adminID, members).Has(candidateID)
}

// AdminIDs returns the ids of every admin in members, in input order.
func AdminIDs(members []Member) []string {
	var out []string
	for _, m := range members {
		if m.Role == RoleAdmin {
			out = append(out, m.ID)
		}
	}
	return out
}

// FindMember looks up id in members.
func FindMember(id string, members []Member) (Member, bool) {
	if id == "" {
		return Member{}, false
	}
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

type IssueKind string

const (
	IssueSelfReference   IssueKind = "self_reference"
	IssueMissingCreator  IssueKind = "missing_creator"
	IssueCreatorNotAdmin IssueKind = "creator_not_admin"
	IssueUnexpectedOwner IssueKind = "unexpected_owner"
)

// IntegrityIssue describes a hierarchy row that the resolver had to ignore.
type IntegrityIssue struct {
	MemberID string
	Kind     IssueKind
	Detail   string
}

func (i IntegrityIssue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.MemberID, i.Kind, i.Detail)
}

// CheckIntegrity reports rows whose CreatedByAdminID cannot be honoured.
// Employees without a creator are legacy accounts and are not reported.
func CheckIntegrity(members []Member) []IntegrityIssue {
	byID := make(map[string]Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	var issues []IntegrityIssue
	for _, m := range members {
		if m.CreatedByAdminID == "" {
			continue
		}
		if m.CreatedByAdminID == m.ID {
			issues = append(issues, IntegrityIssue{MemberID: m.ID, Kind: IssueSelfReference, Detail: "created_by_admin_id points to itself"})
			continue
		}
		if m.Role != RoleEmployee {
			issues = append(issues, IntegrityIssue{MemberID: m.ID, Kind: IssueUnexpectedOwner, Detail: fmt.Sprintf("%s accounts have no creating admin", m.Role)})
			continue
		}
		creator, ok := byID[m.CreatedByAdminID]
		if !ok {
			issues = append(issues, IntegrityIssue{MemberID: m.ID, Kind: IssueMissingCreator, Detail: "admin " + m.CreatedByAdminID + " does not exist"})
			continue
		}
		if creator.Role != RoleAdmin {
			issues = append(issues, IntegrityIssue{MemberID: m.ID, Kind: IssueCreatorNotAdmin, Detail: fmt.Sprintf("creator %s is a %s", creator.ID, creator.Role)})
		}
	}
	return issues
}
