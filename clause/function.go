package clause

import "strings"

// Func is a SQL function call such as COUNT(orders.id).
type Func struct {
	Name     string
	Args     []Expression
	Distinct bool
}

func (f Func) Build() (string, []any, error) {
	parts := make([]string, 0, len(f.Args))
	var args []any
	for _, arg := range f.Args {
		sql, argArgs, err := arg.Build()
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, argArgs...)
	}
	inner := strings.Join(parts, ", ")
	if f.Distinct {
		inner = "DISTINCT " + inner
	}
	return f.Name + "(" + inner + ")", args, nil
}

// As gives a projected expression an output name.
type As struct {
	Expr  Expression
	Alias string
}

func (a As) Build() (string, []any, error) {
	sql, args, err := a.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	return sql + " AS " + a.Alias, args, nil
}

// Order is one ORDER BY term.
type Order struct {
	Expr Expression
	Desc bool
}

func (o Order) Build() (string, []any, error) {
	sql, args, err := o.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	if o.Desc {
		sql += " DESC"
	}
	return sql, args, nil
}

// Assignment represents a column assignment for UPDATE
type Assignment struct {
	Column Column
	Value  any
}

func (a Assignment) Build() (string, []any, error) {
	return a.Column.ColumnName() + " = ?", []any{a.Value}, nil
}
