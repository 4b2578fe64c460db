package access

import "strings"

// Scope controls how much of a collection a permission reaches.
type Scope string

const (
	ScopeNone         Scope = "none"
	ScopeOwn          Scope = "own"
	ScopeCreated      Scope = "created"
	ScopeAssigned     Scope = "assigned"
	ScopeSubordinates Scope = "subordinates"
	ScopeAll          Scope = "all"
)

var allScopes = []Scope{ScopeNone, ScopeOwn, ScopeCreated, ScopeAssigned, ScopeSubordinates, ScopeAll}

// ParseScope normalises s and reports whether it names a known scope.
// Unknown input yields ScopeNone.
func ParseScope(s string) (Scope, bool) {
	sc := Scope(strings.ToLower(strings.TrimSpace(s)))
	if sc.Valid() {
		return sc, true
	}
	return ScopeNone, false
}

func (s Scope) Valid() bool {
	switch s {
	case ScopeNone, ScopeOwn, ScopeCreated, ScopeAssigned, ScopeSubordinates, ScopeAll:
		return true
	}
	return false
}

func (s Scope) String() string {
	return string(s)
}

// Resource identifies an entity collection guarded by the engine.
type Resource string

const (
	ResourceLead          Resource = "lead"
	ResourceCustomer      Resource = "customer"
	ResourceCommunication Resource = "communication"
	ResourceUser          Resource = "user"
)

var userScopes = []Scope{ScopeNone, ScopeOwn, ScopeCreated, ScopeSubordinates, ScopeAll}

// AllowedScopes lists the scopes that are meaningful for r. User accounts have
// no assignee, so "assigned" is not accepted for them.
func AllowedScopes(r Resource) []Scope {
	if r == ResourceUser {
		out := make([]Scope, len(userScopes))
		copy(out, userScopes)
		return out
	}
	out := make([]Scope, len(allScopes))
	copy(out, allScopes)
	return out
}

// Allows reports whether s may be configured for r.
func (r Resource) Allows(s Scope) bool {
	if !s.Valid() {
		return false
	}
	if r == ResourceUser {
		return s != ScopeAssigned
	}
	return true
}
