package squeal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arllen133/squeal/clause"
)

// Sum returns the sum of expr over the matching rows, 0 when there are
// none. expr may reach joined associations:
//
//	spent, err := squeal.Query[User](s).Joins("orders").
//	    Sum(ctx, clause.Column{Table: "orders", Name: "total"})
func (q *QueryBuilder[T]) Sum(ctx context.Context, expr clause.Expression) (float64, error) {
	return q.aggregateFloat(ctx, "SUM", expr)
}

// Avg returns the mean of expr, 0 when there are no rows.
func (q *QueryBuilder[T]) Avg(ctx context.Context, expr clause.Expression) (float64, error) {
	return q.aggregateFloat(ctx, "AVG", expr)
}

// Min returns the smallest value of expr as the driver reports it, or nil.
func (q *QueryBuilder[T]) Min(ctx context.Context, expr clause.Expression) (any, error) {
	return q.aggregateAny(ctx, "MIN", expr)
}

// Max returns the largest value of expr as the driver reports it, or nil.
func (q *QueryBuilder[T]) Max(ctx context.Context, expr clause.Expression) (any, error) {
	return q.aggregateAny(ctx, "MAX", expr)
}

func (q *QueryBuilder[T]) aggregateFloat(ctx context.Context, funcName string, expr clause.Expression) (float64, error) {
	var result sql.NullFloat64
	if err := q.aggregate(ctx, funcName, expr, &result); err != nil {
		return 0, err
	}
	return result.Float64, nil
}

func (q *QueryBuilder[T]) aggregateAny(ctx context.Context, funcName string, expr clause.Expression) (any, error) {
	var result any
	if err := q.aggregate(ctx, funcName, expr, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (q *QueryBuilder[T]) aggregate(ctx context.Context, funcName string, expr clause.Expression, dest any) error {
	agg := clause.Func{Name: funcName, Args: []clause.Expression{expr}}
	c, err := q.compile(ctx, q.session.dialect.PlaceholderFormat(), []clause.Expression{agg}, true)
	if err != nil {
		return fmt.Errorf("squeal: failed to build %s sql: %w", funcName, err)
	}
	if err := q.session.getCompiled(ctx, dest, c); err != nil {
		return fmt.Errorf("squeal: %s failed: %w", funcName, err)
	}
	return nil
}
