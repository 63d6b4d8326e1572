// Package field provides typed column references for generated model code.
// A field starts out bound to its model's table and can be rebound with Of
// to the alias a join assigned to that table.
package field

import "github.com/arllen133/squeal/clause"

type column struct {
	col clause.Column
}

func (c column) Column() clause.Column { return c.col }

func (c column) ColumnName() string { return c.col.ColumnName() }

func (c column) Build() (string, []any, error) { return c.col.Build() }

func (c column) IsNull() clause.Expression    { return clause.IsNull{Expr: c.col} }
func (c column) IsNotNull() clause.Expression { return clause.IsNotNull{Expr: c.col} }

// EqCol compares against another column, typically across a join.
func (c column) EqCol(other interface{ Column() clause.Column }) clause.Expression {
	return clause.Eq(c.col, other.Column())
}

func (c column) Asc() clause.Order  { return clause.Order{Expr: c.col} }
func (c column) Desc() clause.Order { return clause.Order{Expr: c.col, Desc: true} }

func (c column) As(alias string) clause.As { return clause.As{Expr: c.col, Alias: alias} }

func (c column) InExpr(query clause.Expression) clause.Expression {
	return clause.InQuery{Expr: c.col, Query: query}
}

func (c column) NotInExpr(query clause.Expression) clause.Expression {
	return clause.InQuery{Expr: c.col, Query: query, Not: true}
}

func (c column) withName(name string) column {
	c.col.Name = name
	return c
}

func (c column) withTable(table string) column {
	c.col.Table = table
	return c
}

// Field is an untyped column.
type Field struct {
	column
}

func (f Field) WithColumn(name string) Field { return Field{f.withName(name)} }

func (f Field) WithTable(name string) Field { return Field{f.withTable(name)} }

// Of rebinds the field to t, usually the table of a resolved join alias.
func (f Field) Of(t clause.Table) Field { return Field{f.withTable(t.Ref())} }

func (f Field) Eq(value any) clause.Expression  { return clause.Eq(f.col, value) }
func (f Field) Neq(value any) clause.Expression { return clause.Neq(f.col, value) }

func (f Field) In(values ...any) clause.Expression {
	return clause.IN{Expr: f.col, Values: values}
}

func (f Field) Set(val any) clause.Assignment {
	return clause.Assignment{Column: f.col, Value: val}
}

var (
	_ clause.Columnar   = Field{}
	_ clause.Expression = Field{}
)
