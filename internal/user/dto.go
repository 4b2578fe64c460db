package user

import (
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
)

// CreateUserDTO is shared by the admin and employee endpoints. AdminID is
// only read for employees created by a developer.
type CreateUserDTO struct {
	Email       string                  `json:"email" validate:"required,email,max=255"`
	Name        string                  `json:"name" validate:"required,max=120"`
	Password    string                  `json:"password" validate:"required,min=8,max=72"`
	Position    string                  `json:"position,omitempty" validate:"omitempty,oneof=relationship_manager accountant trainer sales_executive operations"`
	AdminID     string                  `json:"admin_id,omitempty"`
	Permissions *access.UserPermissions `json:"permissions,omitempty"`
}

type UpdatePermissionsDTO struct {
	Permissions access.UserPermissions `json:"permissions"`
}

// mergePermissions overlays an explicit permission set on the role defaults.
// Empty scopes and an empty service type list fall back to the defaults;
// flags are taken as given.
func mergePermissions(defaults access.UserPermissions, override *access.UserPermissions) access.UserPermissions {
	if override == nil {
		return defaults
	}
	merged := override.Clone()
	pick := func(v, d access.Scope) access.Scope {
		if v == "" {
			return d
		}
		return v
	}
	merged.ViewLeads = pick(merged.ViewLeads, defaults.ViewLeads)
	merged.EditLeads = pick(merged.EditLeads, defaults.EditLeads)
	merged.DeleteLeads = pick(merged.DeleteLeads, defaults.DeleteLeads)
	merged.ViewCustomers = pick(merged.ViewCustomers, defaults.ViewCustomers)
	merged.EditCustomers = pick(merged.EditCustomers, defaults.EditCustomers)
	merged.DeleteCustomers = pick(merged.DeleteCustomers, defaults.DeleteCustomers)
	merged.ViewCommunications = pick(merged.ViewCommunications, defaults.ViewCommunications)
	merged.ViewUsers = pick(merged.ViewUsers, defaults.ViewUsers)
	if len(merged.AllowedServiceTypes) == 0 {
		merged.AllowedServiceTypes = append(access.ServiceTypes(nil), defaults.AllowedServiceTypes...)
	}
	return merged
}
