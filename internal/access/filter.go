package access

// VisibleEntities returns the entities p may see under scope, preserving input
// order. The input slice and its elements are not modified.
func VisibleEntities[T Owned](e *Evaluator, p *Principal, scope Scope, entities []T, ec EvalContext) ([]T, error) {
	if p == nil {
		return nil, ErrNoPrincipal
	}
	visible := make([]T, 0, len(entities))
	if !scope.Valid() {
		e.logger.Warn("data integrity: unrecognized scope in listing, returning nothing",
			"scope", string(scope),
			"principal_id", p.ID)
		return visible, nil
	}
	if scope == ScopeNone {
		return visible, nil
	}

	for _, ent := range entities {
		ok, err := e.CanAccess(p, scope, ent.Ownership(), ec)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, ent)
		}
	}
	return visible, nil
}

// ListVisible is the listing entry point used by the API layer: the base
// visibility filter for p, narrowed by the developer admin filter when one is
// selected.
func ListVisible[T Owned](e *Evaluator, p *Principal, scope Scope, entities []T, members []Member, filter AdminFilter) ([]T, error) {
	visible, err := VisibleEntities(e, p, scope, entities, ContextFor(p, members))
	if err != nil {
		return nil, err
	}
	return ApplyOverlay(e, p, filter, visible, members)
}
