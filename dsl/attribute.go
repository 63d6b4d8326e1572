package dsl

import "github.com/arllen133/squeal/clause"

// Attribute is a column of the base table or of an association. It
// implements clause.Expression; association columns are qualified with the
// alias resolved when Build is called.
type Attribute struct {
	scope *Scope
	owner *Association
	name  string
}

// Column resolves the attribute to a qualified column.
func (a Attribute) Column() (clause.Column, error) {
	if a.owner == nil {
		return a.scope.table.Col(a.name), nil
	}
	alias, err := a.owner.Alias()
	if err != nil {
		return clause.Column{}, err
	}
	return alias.Table.Col(a.name), nil
}

func (a Attribute) Build() (string, []any, error) {
	col, err := a.Column()
	if err != nil {
		return "", nil, err
	}
	return col.Build()
}

func (a Attribute) Eq(v any) clause.Expression { return clause.Eq(a, v) }
func (a Attribute) Neq(v any) clause.Expression { return clause.Neq(a, v) }
func (a Attribute) Gt(v any) clause.Expression { return clause.Gt(a, v) }
func (a Attribute) Gte(v any) clause.Expression { return clause.Gte(a, v) }
func (a Attribute) Lt(v any) clause.Expression { return clause.Lt(a, v) }
func (a Attribute) Lte(v any) clause.Expression { return clause.Lte(a, v) }
func (a Attribute) Like(v any) clause.Expression { return clause.Like(a, v) }
func (a Attribute) NotLike(v any) clause.Expression { return clause.NotLike(a, v) }
func (a Attribute) IsNull() clause.Expression { return clause.IsNull{Expr: a} }
func (a Attribute) IsNotNull() clause.Expression { return clause.IsNotNull{Expr: a} }
func (a Attribute) In(values ...any) clause.Expression {
	return clause.IN{Expr: a, Values: values}
}

func (a Attribute) Between(lo, hi any) clause.Expression {
	return clause.Between{Expr: a, Min: lo, Max: hi}
}

func (a Attribute) Asc() clause.Order { return clause.Order{Expr: a} }
func (a Attribute) Desc() clause.Order { return clause.Order{Expr: a, Desc: true} }

func (a Attribute) As(alias string) clause.As { return clause.As{Expr: a, Alias: alias} }

// Func is a function call that can be aliased or ordered on.
type Func struct {
	clause.Func
}

func (f Func) As(alias string) clause.As { return clause.As{Expr: f.Func, Alias: alias} }
func (f Func) Asc() clause.Order { return clause.Order{Expr: f.Func} }
func (f Func) Desc() clause.Order { return clause.Order{Expr: f.Func, Desc: true} }

// Distinct applies DISTINCT to the function's arguments.
func (f Func) Distinct() Func {
	f.Func.Distinct = true
	return f
}

func (f Func) Eq(v any) clause.Expression { return clause.Eq(f.Func, v) }
func (f Func) Gt(v any) clause.Expression { return clause.Gt(f.Func, v) }
func (f Func) Gte(v any) clause.Expression { return clause.Gte(f.Func, v) }
func (f Func) Lt(v any) clause.Expression { return clause.Lt(f.Func, v) }
func (f Func) Lte(v any) clause.Expression { return clause.Lte(f.Func, v) }
