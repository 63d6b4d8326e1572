package field

import (
	"golang.org/x/exp/constraints"

	"github.com/arllen133/squeal/clause"
)

// Number is a numeric column holding T.
type Number[T constraints.Integer | constraints.Float] struct {
	column
}

func (n Number[T]) WithColumn(name string) Number[T] { return Number[T]{n.withName(name)} }

func (n Number[T]) WithTable(name string) Number[T] { return Number[T]{n.withTable(name)} }

func (n Number[T]) Of(t clause.Table) Number[T] { return Number[T]{n.withTable(t.Ref())} }

func (n Number[T]) Eq(value T) clause.Expression  { return clause.Eq(n.col, value) }
func (n Number[T]) Neq(value T) clause.Expression { return clause.Neq(n.col, value) }
func (n Number[T]) Gt(value T) clause.Expression  { return clause.Gt(n.col, value) }
func (n Number[T]) Gte(value T) clause.Expression { return clause.Gte(n.col, value) }
func (n Number[T]) Lt(value T) clause.Expression  { return clause.Lt(n.col, value) }
func (n Number[T]) Lte(value T) clause.Expression { return clause.Lte(n.col, value) }

func (n Number[T]) Between(v1, v2 T) clause.Expression {
	return clause.Between{Expr: n.col, Min: v1, Max: v2}
}

func (n Number[T]) In(values ...T) clause.Expression {
	return clause.IN{Expr: n.col, Values: anys(values)}
}

// Sum aggregates the column.
func (n Number[T]) Sum() clause.Func {
	return clause.Func{Name: "SUM", Args: []clause.Expression{n.col}}
}

func (n Number[T]) Set(val T) clause.Assignment {
	return clause.Assignment{Column: n.col, Value: val}
}

var _ clause.Columnar = Number[int64]{}
