// Package dsl builds query expressions from association names instead of
// SQL fragments. Columns reached through associations are resolved to the
// table alias the query's join tree assigned to them when the expression is
// built, not when it is written.
//
//	q.Joining(func(s *dsl.Scope) any {
//	    return s.Assoc("orders").Assoc("line_items").Outer()
//	}).Selecting(func(s *dsl.Scope) any {
//	    return []any{s.Col("name"), s.Sum(s.Assoc("orders").Col("total")).As("spent")}
//	})
package dsl

import (
	"errors"
	"fmt"

	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/clause"
	"github.com/arllen133/squeal/joindep"
)

// ErrNoResolver is returned when an association column is built outside a
// query build.
var ErrNoResolver = errors.New("dsl: association columns need a query build to resolve against")

// AliasResolver maps association chains to table aliases.
type AliasResolver interface {
	ResolveAlias(chain []joindep.Reference) (joindep.Alias, error)
}

// ResolverFunc returns the resolver of the current query build.
type ResolverFunc func() (AliasResolver, error)

// Scope is the receiver of a DSL block. It is bound to the query's base
// model and to the build whose join tree association columns resolve
// against.
type Scope struct {
	registry *assoc.Registry
	model    *assoc.Model
	table    clause.Table
	resolver ResolverFunc
	err      error
}

// NewScope creates a scope for queries on base. resolver may be nil for
// blocks that only reference base columns or author joins.
func NewScope(registry *assoc.Registry, base string, resolver ResolverFunc) (*Scope, error) {
	model, err := registry.Lookup(base)
	if err != nil {
		return nil, err
	}
	return &Scope{
		registry: registry,
		model:    model,
		table:    clause.Table{Name: base},
		resolver: resolver,
	}, nil
}

// Evaluate runs fn against s and returns its result, or the first error a
// lookup inside fn recorded.
func Evaluate(s *Scope, fn func(s *Scope) any) (any, error) {
	v := fn(s)
	if s.err != nil {
		return nil, s.err
	}
	return v, nil
}

// Err returns the first lookup error recorded by s.
func (s *Scope) Err() error { return s.err }

func (s *Scope) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Col references a column of the base table.
func (s *Scope) Col(name string) Attribute {
	return Attribute{scope: s, name: name}
}

// Star selects every column of the base table.
func (s *Scope) Star() clause.Expression {
	return clause.Star{Table: s.table.Ref()}
}

// Assoc references an association declared on the base model.
func (s *Scope) Assoc(name string) *Association {
	a := &Association{scope: s}
	a.reflection, a.err = s.model.Reflect(name)
	if a.err != nil {
		s.fail(a.err)
	}
	return a
}

// Table references an arbitrary table for explicit joins.
func (s *Scope) Table(name string) TableRef {
	return TableRef{table: clause.Table{Name: name}}
}

// Func calls a SQL function. Arguments that are not expressions are bound
// as parameters.
func (s *Scope) Func(name string, args ...any) Func {
	exprs := make([]clause.Expression, len(args))
	for i, arg := range args {
		exprs[i] = clause.Operand(arg)
	}
	return Func{clause.Func{Name: name, Args: exprs}}
}

// Count counts rows, or non-null values of args when given.
func (s *Scope) Count(args ...any) Func {
	if len(args) == 0 {
		return Func{clause.Func{Name: "COUNT", Args: []clause.Expression{clause.Star{}}}}
	}
	return s.Func("COUNT", args...)
}

func (s *Scope) Sum(arg any) Func { return s.Func("SUM", arg) }
func (s *Scope) Avg(arg any) Func { return s.Func("AVG", arg) }
func (s *Scope) Min(arg any) Func { return s.Func("MIN", arg) }
func (s *Scope) Max(arg any) Func { return s.Func("MAX", arg) }

// Raw embeds a SQL fragment.
func (s *Scope) Raw(sql string, args ...any) clause.Expr {
	return clause.Expr{SQL: sql, Vars: args}
}

func (s *Scope) resolve(chain []joindep.Reference) (joindep.Alias, error) {
	if s.resolver == nil {
		return joindep.Alias{}, ErrNoResolver
	}
	r, err := s.resolver()
	if err != nil {
		return joindep.Alias{}, err
	}
	return r.ResolveAlias(chain)
}

// TableRef is a table used in an explicit ON join.
type TableRef struct {
	table clause.Table
	typ   clause.JoinType
}

func (t TableRef) As(alias string) TableRef {
	t.table = t.table.As(alias)
	return t
}

// Outer makes the join a LEFT JOIN.
func (t TableRef) Outer() TableRef {
	t.typ = clause.LeftJoin
	return t
}

func (t TableRef) Col(name string) clause.Column {
	return t.table.Col(name)
}

// On completes the join.
func (t TableRef) On(cond clause.Expression) clause.Join {
	return clause.Join{Type: t.typ, Table: t.table, On: cond}
}

func (t TableRef) String() string {
	return fmt.Sprintf("%s %s", t.typ, t.table.Source())
}
