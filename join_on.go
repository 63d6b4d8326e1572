package squeal

import "github.com/arllen133/squeal/clause"

// JoinOn pairs the columns of one raw join condition.
// An empty Table on Left means the base table; on Right, the joined table.
type JoinOn struct {
	Left  clause.Column
	Right clause.Column
}

// On creates a join condition from two column references, such as
// field.Field values.
//
//	q.Join(OrderSchema{}, squeal.On(User.ID, Order.UserID))
func On(left, right interface{ Column() clause.Column }) JoinOn {
	return JoinOn{
		Left:  left.Column(),
		Right: right.Column(),
	}
}

// Exists wraps a subquery, usually another QueryBuilder, in EXISTS.
func Exists(expr clause.Expression) clause.Expression {
	return clause.ExistsExpr{Expr: expr}
}

func NotExists(expr clause.Expression) clause.Expression {
	return clause.NotExistsExpr{Expr: expr}
}
