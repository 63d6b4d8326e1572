package clause

import (
	"fmt"
	"strings"
)

// Expression is the base interface for all SQL expressions
type Expression interface {
	Build() (sql string, args []any, err error)
}

// Value is a bound parameter.
type Value struct {
	V any
}

func (v Value) Build() (string, []any, error) {
	return "?", []any{v.V}, nil
}

// Operand wraps v as an Expression. Expressions are returned unchanged,
// anything else becomes a bound Value.
func Operand(v any) Expression {
	if e, ok := v.(Expression); ok {
		return e
	}
	return Value{V: v}
}

// Binary renders "left op right".
type Binary struct {
	Left  Expression
	Op    string
	Right Expression
}

func (b Binary) Build() (string, []any, error) {
	lsql, largs, err := b.Left.Build()
	if err != nil {
		return "", nil, err
	}
	rsql, rargs, err := b.Right.Build()
	if err != nil {
		return "", nil, err
	}
	return lsql + " " + b.Op + " " + rsql, concat(largs, rargs...), nil
}

func binary(op string, left, right any) Binary {
	return Binary{Left: Operand(left), Op: op, Right: Operand(right)}
}

// Eq builds left = right. Either side may be a column or a plain value.
func Eq(left, right any) Binary { return binary("=", left, right) }

func Neq(left, right any) Binary { return binary("<>", left, right) }

func Gt(left, right any) Binary { return binary(">", left, right) }

func Gte(left, right any) Binary { return binary(">=", left, right) }

func Lt(left, right any) Binary { return binary("<", left, right) }

func Lte(left, right any) Binary { return binary("<=", left, right) }

func Like(left, pattern any) Binary { return binary("LIKE", left, pattern) }

func NotLike(left, pattern any) Binary { return binary("NOT LIKE", left, pattern) }

// IsNull represents an IS NULL expression
type IsNull struct {
	Expr Expression
}

func (i IsNull) Build() (string, []any, error) {
	sql, args, err := i.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	return sql + " IS NULL", args, nil
}

// IsNotNull represents an IS NOT NULL expression
type IsNotNull struct {
	Expr Expression
}

func (i IsNotNull) Build() (string, []any, error) {
	sql, args, err := i.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	return sql + " IS NOT NULL", args, nil
}

// IN represents an IN expression over a list of values
type IN struct {
	Expr   Expression
	Values []any
}

func (i IN) Build() (string, []any, error) {
	sql, args, err := i.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	switch len(i.Values) {
	case 0:
		return "1 = 0", nil, nil // IN with empty list is always false
	case 1:
		return sql + " = ?", concat(args, i.Values[0]), nil
	default:
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(i.Values)), ", ")
		return fmt.Sprintf("%s IN (%s)", sql, placeholders), concat(args, i.Values...), nil
	}
}

// InQuery represents expr IN (subquery)
type InQuery struct {
	Expr  Expression
	Query Expression
	Not   bool
}

func (i InQuery) Build() (string, []any, error) {
	sql, args, err := i.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	qsql, qargs, err := i.Query.Build()
	if err != nil {
		return "", nil, err
	}
	op := " IN ("
	if i.Not {
		op = " NOT IN ("
	}
	return sql + op + qsql + ")", concat(args, qargs...), nil
}

// Between represents a BETWEEN expression
type Between struct {
	Expr Expression
	Min  any
	Max  any
}

func (b Between) Build() (string, []any, error) {
	sql, args, err := b.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	return sql + " BETWEEN ? AND ?", concat(args, b.Min, b.Max), nil
}

// And represents an AND expression
type And []Expression

func (a And) Build() (string, []any, error) {
	if len(a) == 0 {
		return "1 = 1", nil, nil // Empty AND is always true
	}
	return join(a, " AND ")
}

// Or represents an OR expression
type Or []Expression

func (o Or) Build() (string, []any, error) {
	if len(o) == 0 {
		return "1 = 0", nil, nil // Empty OR is always false
	}
	return join(o, " OR ")
}

func join(exprs []Expression, sep string) (string, []any, error) {
	sqls := make([]string, 0, len(exprs))
	var args []any
	for _, expr := range exprs {
		sql, exprArgs, err := expr.Build()
		if err != nil {
			return "", nil, err
		}
		sqls = append(sqls, "("+sql+")")
		args = append(args, exprArgs...)
	}
	return strings.Join(sqls, sep), args, nil
}

// concat appends onto a fresh slice so argument slices owned by callers
// (Expr.Vars) are never written through.
func concat(args []any, more ...any) []any {
	out := make([]any, 0, len(args)+len(more))
	out = append(out, args...)
	return append(out, more...)
}

// Not represents a NOT expression
type Not struct {
	Expr Expression
}

func (n Not) Build() (string, []any, error) {
	sql, args, err := n.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", args, nil
}

// Expr represents a custom SQL expression
type Expr struct {
	SQL  string
	Vars []any
}

func (e Expr) Build() (string, []any, error) {
	return e.SQL, e.Vars, nil
}

// ExistsExpr represents EXISTS (subquery)
type ExistsExpr struct {
	Expr Expression
}

func (e ExistsExpr) Build() (string, []any, error) {
	sql, args, err := e.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	return "EXISTS (" + sql + ")", args, nil
}

// NotExistsExpr represents NOT EXISTS (subquery)
type NotExistsExpr struct {
	Expr Expression
}

func (n NotExistsExpr) Build() (string, []any, error) {
	sql, args, err := n.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	return "NOT EXISTS (" + sql + ")", args, nil
}
