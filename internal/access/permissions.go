package access

import (
	"errors"
	"fmt"
)

// ServiceType tags a line of business. Users only see entities whose service
// types intersect their allowed set.
type ServiceType string

const (
	ServiceTraining    ServiceType = "training"
	ServiceWealth      ServiceType = "wealth"
	ServiceEquity      ServiceType = "equity"
	ServiceInsurance   ServiceType = "insurance"
	ServiceMutualFunds ServiceType = "mutual_funds"

	DefaultServiceType = ServiceTraining
)

// AllServiceTypes returns every built-in service type.
func AllServiceTypes() ServiceTypes {
	return ServiceTypes{ServiceTraining, ServiceWealth, ServiceEquity, ServiceInsurance, ServiceMutualFunds}
}

type ServiceTypes []ServiceType

func (s ServiceTypes) Contains(t ServiceType) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

// Intersects reports whether s and other share at least one tag.
func (s ServiceTypes) Intersects(other ServiceTypes) bool {
	for _, v := range other {
		if s.Contains(v) {
			return true
		}
	}
	return false
}

func (s ServiceTypes) Strings() []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}

func ServiceTypesFromStrings(in []string) ServiceTypes {
	out := make(ServiceTypes, 0, len(in))
	for _, v := range in {
		out = append(out, ServiceType(v))
	}
	return out
}

// ScopeField names a scope-valued permission.
type ScopeField string

const (
	FieldViewLeads          ScopeField = "viewLeads"
	FieldEditLeads          ScopeField = "editLeads"
	FieldDeleteLeads        ScopeField = "deleteLeads"
	FieldViewCustomers      ScopeField = "viewCustomers"
	FieldEditCustomers      ScopeField = "editCustomers"
	FieldDeleteCustomers    ScopeField = "deleteCustomers"
	FieldViewCommunications ScopeField = "viewCommunications"
	FieldViewUsers          ScopeField = "viewUsers"
)

var scopeFields = []ScopeField{
	FieldViewLeads, FieldEditLeads, FieldDeleteLeads,
	FieldViewCustomers, FieldEditCustomers, FieldDeleteCustomers,
	FieldViewCommunications, FieldViewUsers,
}

func ScopeFields() []ScopeField {
	out := make([]ScopeField, len(scopeFields))
	copy(out, scopeFields)
	return out
}

// Resource returns the collection the field applies to.
func (f ScopeField) Resource() Resource {
	switch f {
	case FieldViewLeads, FieldEditLeads, FieldDeleteLeads:
		return ResourceLead
	case FieldViewCustomers, FieldEditCustomers, FieldDeleteCustomers:
		return ResourceCustomer
	case FieldViewCommunications:
		return ResourceCommunication
	case FieldViewUsers:
		return ResourceUser
	}
	return ""
}

// Flag names a boolean, action-level permission.
type Flag string

const (
	FlagCreateLeads         Flag = "createLeads"
	FlagAssignLeads         Flag = "assignLeads"
	FlagCreateCustomers     Flag = "createCustomers"
	FlagAssignCustomers     Flag = "assignCustomers"
	FlagAddCommunications   Flag = "addCommunications"
	FlagPlayRecordings      Flag = "playRecordings"
	FlagDownloadRecordings  Flag = "downloadRecordings"
	FlagCreateAdmin         Flag = "createAdmin"
	FlagCreateEmployee      Flag = "createEmployee"
	FlagEditUserPermissions Flag = "editUserPermissions"
	FlagDeleteUser          Flag = "deleteUser"
	FlagClearSystemData     Flag = "clearSystemData"
)

var flags = []Flag{
	FlagCreateLeads, FlagAssignLeads, FlagCreateCustomers, FlagAssignCustomers,
	FlagAddCommunications, FlagPlayRecordings, FlagDownloadRecordings,
	FlagCreateAdmin, FlagCreateEmployee, FlagEditUserPermissions, FlagDeleteUser,
	FlagClearSystemData,
}

func Flags() []Flag {
	out := make([]Flag, len(flags))
	copy(out, flags)
	return out
}

// UserPermissions is attached to every user account.
type UserPermissions struct {
	ViewLeads          Scope `json:"viewLeads"`
	EditLeads          Scope `json:"editLeads"`
	DeleteLeads        Scope `json:"deleteLeads"`
	ViewCustomers      Scope `json:"viewCustomers"`
	EditCustomers      Scope `json:"editCustomers"`
	DeleteCustomers    Scope `json:"deleteCustomers"`
	ViewCommunications Scope `json:"viewCommunications"`
	ViewUsers          Scope `json:"viewUsers"`

	CreateLeads         bool `json:"createLeads"`
	AssignLeads         bool `json:"assignLeads"`
	CreateCustomers     bool `json:"createCustomers"`
	AssignCustomers     bool `json:"assignCustomers"`
	AddCommunications   bool `json:"addCommunications"`
	PlayRecordings      bool `json:"playRecordings"`
	DownloadRecordings  bool `json:"downloadRecordings"`
	CreateAdmin         bool `json:"createAdmin"`
	CreateEmployee      bool `json:"createEmployee"`
	EditUserPermissions bool `json:"editUserPermissions"`
	DeleteUser          bool `json:"deleteUser"`
	ClearSystemData     bool `json:"clearSystemData"`

	AllowedServiceTypes ServiceTypes `json:"allowedServiceTypes"`
}

// Scope returns the value of field f. Unknown fields read as ScopeNone.
func (p UserPermissions) Scope(f ScopeField) Scope {
	switch f {
	case FieldViewLeads:
		return p.ViewLeads
	case FieldEditLeads:
		return p.EditLeads
	case FieldDeleteLeads:
		return p.DeleteLeads
	case FieldViewCustomers:
		return p.ViewCustomers
	case FieldEditCustomers:
		return p.EditCustomers
	case FieldDeleteCustomers:
		return p.DeleteCustomers
	case FieldViewCommunications:
		return p.ViewCommunications
	case FieldViewUsers:
		return p.ViewUsers
	}
	return ScopeNone
}

// Has reports whether flag f is granted. Unknown flags are never granted.
func (p UserPermissions) Has(f Flag) bool {
	switch f {
	case FlagCreateLeads:
		return p.CreateLeads
	case FlagAssignLeads:
		return p.AssignLeads
	case FlagCreateCustomers:
		return p.CreateCustomers
	case FlagAssignCustomers:
		return p.AssignCustomers
	case FlagAddCommunications:
		return p.AddCommunications
	case FlagPlayRecordings:
		return p.PlayRecordings
	case FlagDownloadRecordings:
		return p.DownloadRecordings
	case FlagCreateAdmin:
		return p.CreateAdmin
	case FlagCreateEmployee:
		return p.CreateEmployee
	case FlagEditUserPermissions:
		return p.EditUserPermissions
	case FlagDeleteUser:
		return p.DeleteUser
	case FlagClearSystemData:
		return p.ClearSystemData
	}
	return false
}

// Clone returns a copy that does not share the service type slice.
func (p UserPermissions) Clone() UserPermissions {
	c := p
	if p.AllowedServiceTypes != nil {
		c.AllowedServiceTypes = make(ServiceTypes, len(p.AllowedServiceTypes))
		copy(c.AllowedServiceTypes, p.AllowedServiceTypes)
	}
	return c
}

// GrantExceeds lists the fields where next adds to current something the
// grantor does not hold itself: a flag, a service type, or the "all" scope.
// Fields left as they were are never reported, and the developer may grant
// anything.
func GrantExceeds(grantor *Principal, current, next UserPermissions) []string {
	if grantor.IsDeveloper() {
		return nil
	}
	var held UserPermissions
	if grantor != nil {
		held = grantor.Permissions
	}

	var out []string
	for _, f := range scopeFields {
		if next.Scope(f) == ScopeAll && current.Scope(f) != ScopeAll && held.Scope(f) != ScopeAll {
			out = append(out, string(f))
		}
	}
	for _, f := range flags {
		if next.Has(f) && !current.Has(f) && !held.Has(f) {
			out = append(out, string(f))
		}
	}
	for _, t := range next.AllowedServiceTypes {
		if !current.AllowedServiceTypes.Contains(t) && !held.AllowedServiceTypes.Contains(t) {
			out = append(out, "allowedServiceTypes")
			break
		}
	}
	return out
}

// InvalidScopeError reports a scope value that is unknown or not accepted by
// the field's resource.
type InvalidScopeError struct {
	Field ScopeField
	Value Scope
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope %q for %s", e.Value, e.Field)
}

// Validate checks every scope field against the scopes its resource accepts.
func (p UserPermissions) Validate() error {
	var errs []error
	for _, f := range scopeFields {
		v := p.Scope(f)
		if !f.Resource().Allows(v) {
			errs = append(errs, &InvalidScopeError{Field: f, Value: v})
		}
	}
	return errors.Join(errs...)
}

// DefaultPermissionsFor returns the seed permission set for role. Unknown roles
// receive the employee defaults.
func DefaultPermissionsFor(role Role) UserPermissions {
	switch role {
	case RoleDeveloper:
		return UserPermissions{
			ViewLeads:           ScopeAll,
			EditLeads:           ScopeAll,
			DeleteLeads:         ScopeAll,
			ViewCustomers:       ScopeAll,
			EditCustomers:       ScopeAll,
			DeleteCustomers:     ScopeAll,
			ViewCommunications:  ScopeAll,
			ViewUsers:           ScopeAll,
			CreateLeads:         true,
			AssignLeads:         true,
			CreateCustomers:     true,
			AssignCustomers:     true,
			AddCommunications:   true,
			PlayRecordings:      true,
			DownloadRecordings:  true,
			CreateAdmin:         true,
			CreateEmployee:      true,
			EditUserPermissions: true,
			DeleteUser:          true,
			ClearSystemData:     true,
			AllowedServiceTypes: AllServiceTypes(),
		}
	case RoleAdmin:
		return UserPermissions{
			ViewLeads:           ScopeCreated,
			EditLeads:           ScopeCreated,
			DeleteLeads:         ScopeCreated,
			ViewCustomers:       ScopeSubordinates,
			EditCustomers:       ScopeSubordinates,
			DeleteCustomers:     ScopeCreated,
			ViewCommunications:  ScopeSubordinates,
			ViewUsers:           ScopeSubordinates,
			CreateLeads:         true,
			AssignLeads:         true,
			CreateCustomers:     true,
			AssignCustomers:     true,
			AddCommunications:   true,
			PlayRecordings:      true,
			DownloadRecordings:  true,
			CreateAdmin:         false,
			CreateEmployee:      true,
			EditUserPermissions: true,
			DeleteUser:          true,
			ClearSystemData:     false,
			AllowedServiceTypes: AllServiceTypes(),
		}
	default:
		return UserPermissions{
			ViewLeads:           ScopeAssigned,
			EditLeads:           ScopeAssigned,
			DeleteLeads:         ScopeNone,
			ViewCustomers:       ScopeAssigned,
			EditCustomers:       ScopeAssigned,
			DeleteCustomers:     ScopeNone,
			ViewCommunications:  ScopeOwn,
			ViewUsers:           ScopeOwn,
			CreateLeads:         true,
			AddCommunications:   true,
			PlayRecordings:      true,
			AllowedServiceTypes: ServiceTypes{DefaultServiceType},
		}
	}
}
