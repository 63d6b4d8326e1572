package squeal

import (
	"fmt"

	"github.com/arllen133/squeal/clause"
	"github.com/arllen133/squeal/dsl"
	"github.com/arllen133/squeal/joindep"
)

// DSLFunc is a block evaluated against a scope on the query's base model.
type DSLFunc func(s *dsl.Scope) any

// evaluate runs fn against a fresh scope and flattens its result. A lookup
// error inside fn is recorded on q.
func (q *QueryBuilder[T]) evaluate(clauseName string, fn DSLFunc) ([]any, bool) {
	if q.err != nil {
		return nil, false
	}
	s, err := q.scope()
	if err != nil {
		q.err = fmt.Errorf("squeal: %s: %w", clauseName, err)
		return nil, false
	}
	v, err := dsl.Evaluate(s, fn)
	if err != nil {
		q.err = fmt.Errorf("squeal: %s: %w", clauseName, err)
		return nil, false
	}
	return flatten(v), true
}

// Joining adds the joins returned by fn. Associations returned bare are
// inner joined.
//
//	q.Joining(func(s *dsl.Scope) any {
//	    return []any{s.Assoc("orders").Assoc("line_items"), s.Assoc("comments").Outer()}
//	})
func (q *QueryBuilder[T]) Joining(fn DSLFunc) *QueryBuilder[T] {
	items, ok := q.evaluate("joining", fn)
	if !ok {
		return q
	}
	specs := make([]joindep.Spec, 0, len(items))
	for _, item := range items {
		if a, isAssoc := item.(*dsl.Association); isAssoc {
			item = a.Join()
		}
		specs = append(specs, item)
	}
	return q.Joins(specs...)
}

// Selecting adds the projections returned by fn. Strings are taken as raw
// SQL.
func (q *QueryBuilder[T]) Selecting(fn DSLFunc) *QueryBuilder[T] {
	exprs, ok := q.expressions("selecting", fn)
	if ok {
		q.Select(exprs...)
	}
	return q
}

// Ordering adds the ORDER BY terms returned by fn. Expressions that are not
// clause.Order sort ascending.
func (q *QueryBuilder[T]) Ordering(fn DSLFunc) *QueryBuilder[T] {
	orders, ok := q.orderTerms("ordering", fn)
	if ok {
		q.OrderBy(orders...)
	}
	return q
}

// Reordering replaces the ordering with the terms returned by fn.
func (q *QueryBuilder[T]) Reordering(fn DSLFunc) *QueryBuilder[T] {
	orders, ok := q.orderTerms("reordering", fn)
	if ok {
		q.Reorder(orders...)
	}
	return q
}

func (q *QueryBuilder[T]) Grouping(fn DSLFunc) *QueryBuilder[T] {
	exprs, ok := q.expressions("grouping", fn)
	if ok {
		q.GroupBy(exprs...)
	}
	return q
}

// WhenHaving adds the HAVING conditions returned by fn.
//
//	q.Joining(func(s *dsl.Scope) any { return s.Assoc("orders") }).
//	    Grouping(func(s *dsl.Scope) any { return s.Col("id") }).
//	    WhenHaving(func(s *dsl.Scope) any { return s.Count(s.Assoc("orders").Col("id")).Gt(3) })
func (q *QueryBuilder[T]) WhenHaving(fn DSLFunc) *QueryBuilder[T] {
	exprs, ok := q.expressions("having", fn)
	if ok {
		for _, expr := range exprs {
			q.Having(expr)
		}
	}
	return q
}

// Filtering adds the WHERE conditions returned by fn.
func (q *QueryBuilder[T]) Filtering(fn DSLFunc) *QueryBuilder[T] {
	exprs, ok := q.expressions("where", fn)
	if ok {
		for _, expr := range exprs {
			q.Where(expr)
		}
	}
	return q
}

func (q *QueryBuilder[T]) expressions(clauseName string, fn DSLFunc) ([]clause.Expression, bool) {
	items, ok := q.evaluate(clauseName, fn)
	if !ok {
		return nil, false
	}
	exprs := make([]clause.Expression, 0, len(items))
	for _, item := range items {
		expr, err := toExpression(item)
		if err != nil {
			q.err = fmt.Errorf("squeal: %s: %w", clauseName, err)
			return nil, false
		}
		exprs = append(exprs, expr)
	}
	return exprs, true
}

func (q *QueryBuilder[T]) orderTerms(clauseName string, fn DSLFunc) ([]clause.Order, bool) {
	exprs, ok := q.expressions(clauseName, fn)
	if !ok {
		return nil, false
	}
	orders := make([]clause.Order, len(exprs))
	for i, expr := range exprs {
		if o, isOrder := expr.(clause.Order); isOrder {
			orders[i] = o
			continue
		}
		orders[i] = clause.Order{Expr: expr}
	}
	return orders, true
}

func toExpression(v any) (clause.Expression, error) {
	switch e := v.(type) {
	case clause.Expression:
		return e, nil
	case string:
		return clause.Expr{SQL: e}, nil
	default:
		return nil, fmt.Errorf("unsupported DSL value %T", v)
	}
}

// flatten expands nested slices returned from DSL blocks.
func flatten(v any) []any {
	switch items := v.(type) {
	case nil:
		return nil
	case []any:
		var out []any
		for _, item := range items {
			out = append(out, flatten(item)...)
		}
		return out
	case []clause.Expression:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out
	default:
		return []any{v}
	}
}
