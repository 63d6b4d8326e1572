package squeal

import (
	"fmt"

	"github.com/arllen133/squeal/clause"
	"github.com/arllen133/squeal/joindep"
)

// NativeJoinRule buckets the join specs the query builder understands on
// its own. Anything else, DSL join nodes included, is Unknown.
func NativeJoinRule(spec joindep.Spec) joindep.Bucket {
	switch spec.(type) {
	case string, []string, map[string]any, []any:
		return joindep.AssociationJoin
	case clause.Join:
		return joindep.JoinNode
	case clause.Expr:
		return joindep.StringJoin
	default:
		return joindep.Unknown
	}
}

// planJoins partitions specs with p and rejects specs no bucket accepted.
func planJoins(p joindep.Partitioner, specs []joindep.Spec) (joindep.Grouping, error) {
	if p == nil {
		p = joindep.Classify
	}
	g := p(specs, NativeJoinRule)
	if unknown := g[joindep.Unknown]; len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %T", joindep.ErrUnsupportedJoin, unknown[0])
	}
	return g, nil
}

func joinNodes(g joindep.Grouping) []clause.Join {
	specs := g[joindep.JoinNode]
	joins := make([]clause.Join, 0, len(specs))
	for _, spec := range specs {
		joins = append(joins, spec.(clause.Join))
	}
	return joins
}

type tableNamer interface {
	TableName() string
}

// join adds a raw table join. Unqualified columns in ons default to the
// base table on the left and the joined table on the right.
func (q *QueryBuilder[T]) join(typ clause.JoinType, target tableNamer, alias string, ons ...JoinOn) *QueryBuilder[T] {
	if len(ons) == 0 {
		return q
	}
	table := clause.Table{Name: target.TableName(), Alias: alias}
	conds := make(clause.And, 0, len(ons))
	for _, on := range ons {
		left, right := on.Left, on.Right
		if left.Table == "" {
			left.Table = q.table
		}
		if right.Table == "" {
			right.Table = table.Ref()
		}
		conds = append(conds, clause.Eq(left, right))
	}
	return q.Joins(clause.Join{Type: typ, Table: table, On: conjunction(conds)})
}

// Join adds an INNER JOIN on target.
//
//	q.Join(OrderSchema{}, squeal.On(UserID, OrderUserID))
func (q *QueryBuilder[T]) Join(target tableNamer, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(clause.InnerJoin, target, "", ons...)
}

// JoinAs adds an INNER JOIN on target under alias.
func (q *QueryBuilder[T]) JoinAs(target tableNamer, alias string, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(clause.InnerJoin, target, alias, ons...)
}

func (q *QueryBuilder[T]) LeftJoin(target tableNamer, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(clause.LeftJoin, target, "", ons...)
}

func (q *QueryBuilder[T]) LeftJoinAs(target tableNamer, alias string, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(clause.LeftJoin, target, alias, ons...)
}

func (q *QueryBuilder[T]) RightJoin(target tableNamer, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(clause.RightJoin, target, "", ons...)
}

func (q *QueryBuilder[T]) RightJoinAs(target tableNamer, alias string, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(clause.RightJoin, target, alias, ons...)
}

// FullJoin adds a FULL OUTER JOIN. Building fails with
// ErrFullJoinUnsupported on dialects without one.
func (q *QueryBuilder[T]) FullJoin(target tableNamer, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(clause.FullJoin, target, "", ons...)
}

// JoinTable adds an INNER JOIN on a table by name with an arbitrary
// condition.
func (q *QueryBuilder[T]) JoinTable(table string, on clause.Expression) *QueryBuilder[T] {
	return q.Joins(clause.Join{Type: clause.InnerJoin, Table: clause.Table{Name: table}, On: on})
}

func (q *QueryBuilder[T]) LeftJoinTable(table string, on clause.Expression) *QueryBuilder[T] {
	return q.Joins(clause.Join{Type: clause.LeftJoin, Table: clause.Table{Name: table}, On: on})
}

// JoinRaw adds a join written in SQL, rendered after every other join.
//
//	q.JoinRaw("JOIN audit_log a ON a.user_id = users.id AND a.kind = ?", "login")
func (q *QueryBuilder[T]) JoinRaw(sql string, args ...any) *QueryBuilder[T] {
	return q.Joins(clause.Expr{SQL: sql, Vars: args})
}
