package clause

import "fmt"

// JoinType selects the JOIN keyword.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
)

// Keyword returns the SQL keyword introducing the join.
func (t JoinType) Keyword() string {
	switch t {
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case FullJoin:
		return "FULL OUTER JOIN"
	default:
		return "JOIN"
	}
}

func (t JoinType) String() string {
	switch t {
	case LeftJoin:
		return "left"
	case RightJoin:
		return "right"
	case FullJoin:
		return "full"
	default:
		return "inner"
	}
}

// Join is an explicit table join: "LEFT JOIN orders o ON o.user_id = users.id".
type Join struct {
	Type  JoinType
	Table Table
	On    Expression
}

func (j Join) Build() (string, []any, error) {
	if j.On == nil {
		return "", nil, fmt.Errorf("clause: join of %s has no ON condition", j.Table.Source())
	}
	sql, args, err := j.On.Build()
	if err != nil {
		return "", nil, err
	}
	return j.Type.Keyword() + " " + j.Table.Source() + " ON " + sql, args, nil
}
