package field

import "github.com/arllen133/squeal/clause"

// String is a text column.
type String struct {
	column
}

func (s String) WithColumn(name string) String { return String{s.withName(name)} }

func (s String) WithTable(name string) String { return String{s.withTable(name)} }

func (s String) Of(t clause.Table) String { return String{s.withTable(t.Ref())} }

func (s String) Eq(value string) clause.Expression  { return clause.Eq(s.col, value) }
func (s String) Neq(value string) clause.Expression { return clause.Neq(s.col, value) }

func (s String) Like(pattern string) clause.Expression {
	return clause.Like(s.col, pattern)
}

func (s String) NotLike(pattern string) clause.Expression {
	return clause.NotLike(s.col, pattern)
}

func (s String) In(values ...string) clause.Expression {
	return clause.IN{Expr: s.col, Values: anys(values)}
}

func (s String) NotIn(values ...string) clause.Expression {
	return clause.Not{Expr: s.In(values...)}
}

func (s String) Set(val string) clause.Assignment {
	return clause.Assignment{Column: s.col, Value: val}
}

func anys[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
