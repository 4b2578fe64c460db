package access

// Assignable reports whether p may hand records to assignee. The developer
// may pick any active user. Admins pick themselves or their employees, and
// employees pick themselves, their admin or a peer under the same admin.
func Assignable(p *Principal, assignee string, members []Member) bool {
	if p == nil {
		return false
	}
	target, ok := FindMember(assignee, members)
	if !ok || !target.Active {
		return false
	}
	switch {
	case p.IsDeveloper():
		return true
	case target.ID == p.ID:
		return true
	case p.Role == RoleAdmin:
		return IsSubordinateOf(target.ID, p.ID, members)
	default:
		self, ok := FindMember(p.ID, members)
		if !ok || self.CreatedByAdminID == "" {
			return false
		}
		return target.ID == self.CreatedByAdminID || target.CreatedByAdminID == self.CreatedByAdminID
	}
}
