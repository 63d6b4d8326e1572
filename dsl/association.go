package dsl

import (
	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/clause"
	"github.com/arllen133/squeal/joindep"
)

// Association references an association reached from the base model
// through its parents.
type Association struct {
	scope      *Scope
	parent     *Association
	reflection *assoc.Reflection
	err        error
}

// Reflection returns the declared reflection a references.
func (a *Association) Reflection() *assoc.Reflection { return a.reflection }

// Assoc references an association declared on a's target model.
func (a *Association) Assoc(name string) *Association {
	child := &Association{scope: a.scope, parent: a}
	switch {
	case a.err != nil:
		child.err = a.err
	default:
		var model *assoc.Model
		model, child.err = a.scope.registry.Target(a.reflection)
		if child.err == nil {
			child.reflection, child.err = model.Reflect(name)
		}
		if child.err != nil {
			a.scope.fail(child.err)
		}
	}
	return child
}

// Col references a column of the association's table.
func (a *Association) Col(name string) Attribute {
	return Attribute{scope: a.scope, owner: a, name: name}
}

// Star selects every column of the association's table.
func (a *Association) Star() clause.Expression {
	return star{owner: a}
}

// Chain returns the references from the base model down to a.
func (a *Association) Chain() []joindep.Reference {
	var chain []joindep.Reference
	for cur := a; cur != nil; cur = cur.parent {
		chain = append([]joindep.Reference{cur}, chain...)
	}
	return chain
}

// Path returns the declared reflections from the base model down to a.
func (a *Association) Path() []*assoc.Reflection {
	chain := a.Chain()
	path := make([]*assoc.Reflection, len(chain))
	for i, ref := range chain {
		path[i] = ref.Reflection()
	}
	return path
}

// Alias resolves the table alias of a in the current build.
func (a *Association) Alias() (joindep.Alias, error) {
	if a.err != nil {
		return joindep.Alias{}, a.err
	}
	return a.scope.resolve(a.Chain())
}

// Join joins a (and every association above it) with inner joins.
func (a *Association) Join() *Join {
	return &Join{association: a, typ: clause.InnerJoin}
}

// Outer joins a with a LEFT JOIN; associations above it stay inner.
func (a *Association) Outer() *Join {
	return &Join{association: a, typ: clause.LeftJoin}
}

// Join is a join node authored through the DSL.
type Join struct {
	association *Association
	typ         clause.JoinType
}

func (j *Join) JoinPath() []*assoc.Reflection {
	if j.association.err != nil {
		return nil
	}
	return j.association.Path()
}

func (j *Join) JoinType() clause.JoinType { return j.typ }

// Err returns the lookup error that left the join without a path.
func (j *Join) Err() error { return j.association.err }

// Association returns the association being joined.
func (j *Join) Association() *Association { return j.association }

var (
	_ joindep.Reference = (*Association)(nil)
	_ joindep.DSLJoin   = (*Join)(nil)
)

type star struct {
	owner *Association
}

func (s star) Build() (string, []any, error) {
	alias, err := s.owner.Alias()
	if err != nil {
		return "", nil, err
	}
	return clause.Star{Table: alias.Table.Ref()}.Build()
}
