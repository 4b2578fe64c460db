package access

import (
	"errors"
	"log/slog"
)

var (
	ErrNoPrincipal      = errors.New("access: no principal")
	ErrPermissionDenied = errors.New("access: permission denied")
	ErrNotVisible       = errors.New("access: entity not visible")
)

// Principal is an authenticated user as seen by the evaluator.
type Principal struct {
	ID          string
	Role        Role
	Permissions UserPermissions
}

func (p *Principal) IsDeveloper() bool {
	return p != nil && p.Role == RoleDeveloper
}

// Ownership carries the attributes that scopes are evaluated against.
//
// For user accounts Self is the account id and CreatedBy holds the
// created_by_admin_id of the account; AssignedTo is unused.
type Ownership struct {
	Resource     Resource
	Self         string
	CreatedBy    string
	AssignedTo   string
	ServiceTypes ServiceTypes
}

// Owned is implemented by every entity the engine can filter.
type Owned interface {
	Ownership() Ownership
}

// EvalContext carries data computed once per request.
type EvalContext struct {
	Subordinates SubordinateSet
}

// ContextFor precomputes the subordinate set of p. Only admins have one; the
// developer is the hierarchy root and has no intrinsic subordinates.
func ContextFor(p *Principal, members []Member) EvalContext {
	if p == nil || p.Role != RoleAdmin {
		return EvalContext{Subordinates: SubordinateSet{}}
	}
	return EvalContext{Subordinates: SubordinateEmployeeIDs(p.ID, members)}
}

// Evaluator makes allow/deny decisions. It holds no per-request state and is
// safe for concurrent use.
type Evaluator struct {
	logger *slog.Logger
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// CanAccess decides whether p may act on an entity with ownership o under scope.
// Denial is reported as false; the only error is a missing principal.
func (e *Evaluator) CanAccess(p *Principal, scope Scope, o Ownership, ec EvalContext) (bool, error) {
	if p == nil {
		return false, ErrNoPrincipal
	}
	if !scope.Valid() {
		e.logger.Warn("data integrity: unrecognized scope, denying",
			"scope", string(scope),
			"resource", o.Resource,
			"principal_id", p.ID)
		return false, nil
	}
	if o.Resource != "" && !o.Resource.Allows(scope) {
		e.logger.Warn("data integrity: scope not valid for resource, denying",
			"scope", string(scope),
			"resource", o.Resource,
			"principal_id", p.ID)
		return false, nil
	}

	if !matchScope(p, scope, o, ec) {
		return false, nil
	}
	return serviceTypesAllow(p, o), nil
}

// Allowed checks a boolean action flag. Create-style actions have no target,
// so nothing else is consulted.
func (e *Evaluator) Allowed(p *Principal, f Flag) (bool, error) {
	if p == nil {
		return false, ErrNoPrincipal
	}
	return p.Permissions.Has(f), nil
}

// Authorize gates a mutation on a single entity. It returns ErrNotVisible when
// p cannot see the entity under viewScope, and ErrPermissionDenied when the
// entity is visible but actionScope denies.
func (e *Evaluator) Authorize(p *Principal, viewScope, actionScope Scope, o Ownership, ec EvalContext) error {
	if err := e.requireVisible(p, viewScope, o, ec); err != nil {
		return err
	}
	ok, err := e.CanAccess(p, actionScope, o, ec)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

// AuthorizeFlag is Authorize for actions gated by a flag on a visible entity,
// such as playing a recording or reassigning a lead.
func (e *Evaluator) AuthorizeFlag(p *Principal, viewScope Scope, f Flag, o Ownership, ec EvalContext) error {
	if err := e.requireVisible(p, viewScope, o, ec); err != nil {
		return err
	}
	if !p.Permissions.Has(f) {
		return ErrPermissionDenied
	}
	return nil
}

func (e *Evaluator) requireVisible(p *Principal, viewScope Scope, o Ownership, ec EvalContext) error {
	visible, err := e.CanAccess(p, viewScope, o, ec)
	if err != nil {
		return err
	}
	if !visible {
		return ErrNotVisible
	}
	return nil
}

func matchScope(p *Principal, scope Scope, o Ownership, ec EvalContext) bool {
	switch scope {
	case ScopeNone:
		return false
	case ScopeAll:
		return true
	case ScopeOwn:
		if o.Resource == ResourceUser && same(o.Self, p.ID) {
			return true
		}
		return same(o.CreatedBy, p.ID)
	case ScopeCreated:
		return same(o.CreatedBy, p.ID)
	case ScopeAssigned:
		return same(o.AssignedTo, p.ID)
	case ScopeSubordinates:
		if o.Resource == ResourceUser {
			if p.Role == RoleAdmin && same(o.Self, p.ID) {
				return true
			}
			return ec.Subordinates.Has(o.Self)
		}
		return same(o.CreatedBy, p.ID) ||
			same(o.AssignedTo, p.ID) ||
			ec.Subordinates.Has(o.CreatedBy) ||
			ec.Subordinates.Has(o.AssignedTo)
	default:
		return false
	}
}

func serviceTypesAllow(p *Principal, o Ownership) bool {
	if len(o.ServiceTypes) == 0 {
		return true
	}
	return p.Permissions.AllowedServiceTypes.Intersects(o.ServiceTypes)
}

// same compares ids; missing ids never match.
func same(a, b string) bool {
	return a != "" && a == b
}
