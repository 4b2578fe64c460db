package access

// AdminFilter is the developer's "view as admin" selection. The zero value
// means no filter. It is session state and never part of UserPermissions.
type AdminFilter struct {
	adminID string
}

func NewAdminFilter(adminID string) AdminFilter {
	return AdminFilter{adminID: adminID}
}

func (f AdminFilter) Active() bool {
	return f.adminID != ""
}

func (f AdminFilter) AdminID() string {
	return f.adminID
}

// Select moves to "filtered to adminID", from any state.
func (f AdminFilter) Select(adminID string) AdminFilter {
	return AdminFilter{adminID: adminID}
}

// Clear returns to "no filter selected".
func (f AdminFilter) Clear() AdminFilter {
	return AdminFilter{}
}

// NarrowToAdmin returns {adminID} ∪ subordinates(adminID).
func NarrowToAdmin(adminID string, members []Member) SubordinateSet {
	set := SubordinateEmployeeIDs(adminID, members)
	if adminID != "" {
		set[adminID] = struct{}{}
	}
	return set
}

// ApplyOverlay narrows an already filtered listing to what the selected admin
// reaches with the "subordinates" scope: records created by or assigned to the
// admin or one of its employees, and for user accounts the admin and its
// employees. It is the identity when no filter is selected or p is not a
// developer. A filter naming someone who is not an admin yields nothing.
func ApplyOverlay[T Owned](e *Evaluator, p *Principal, filter AdminFilter, entities []T, members []Member) ([]T, error) {
	if p == nil {
		return nil, ErrNoPrincipal
	}
	if !filter.Active() || !p.IsDeveloper() {
		return entities, nil
	}

	admin, ok := FindMember(filter.AdminID(), members)
	if !ok || admin.Role != RoleAdmin {
		e.logger.Warn("data integrity: admin filter names a missing or non-admin user",
			"admin_id", filter.AdminID(),
			"principal_id", p.ID)
		return make([]T, 0), nil
	}

	standIn := &Principal{ID: admin.ID, Role: RoleAdmin, Permissions: p.Permissions}
	ec := EvalContext{Subordinates: SubordinateEmployeeIDs(admin.ID, members)}

	narrowed := make([]T, 0, len(entities))
	for _, ent := range entities {
		ok, err := e.CanAccess(standIn, ScopeSubordinates, ent.Ownership(), ec)
		if err != nil {
			return nil, err
		}
		if ok {
			narrowed = append(narrowed, ent)
		}
	}
	return narrowed, nil
}
