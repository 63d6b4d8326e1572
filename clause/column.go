package clause

// Columnar defines an interface for providing a column name.
type Columnar interface {
	ColumnName() string
}

// Table is a table reference, optionally aliased.
// A zero Alias means the table is referenced by its own name.
type Table struct {
	Name  string
	Alias string
}

// Ref returns the identifier other clauses use to qualify columns of t.
func (t Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Source returns the table as it appears in FROM or JOIN ("orders o").
func (t Table) Source() string {
	if t.Alias != "" && t.Alias != t.Name {
		return t.Name + " " + t.Alias
	}
	return t.Name
}

// As returns a copy of t aliased to alias.
func (t Table) As(alias string) Table {
	t.Alias = alias
	return t
}

// Col returns a column qualified by the table's reference.
func (t Table) Col(name string) Column {
	return Column{Table: t.Ref(), Name: name}
}

// Column represents a database column with optional table qualifier
type Column struct {
	Table string
	Name  string
}

func (c Column) Column() Column { return c }

// ColumnName returns the full column name (with table prefix if specified)
func (c Column) ColumnName() string {
	if c.Table != "" {
		return c.Table + "." + c.Name
	}
	return c.Name
}

func (c Column) Build() (string, []any, error) {
	return c.ColumnName(), nil, nil
}

// Star selects every column, optionally of a single table.
type Star struct {
	Table string
}

func (s Star) Build() (string, []any, error) {
	if s.Table != "" {
		return s.Table + ".*", nil, nil
	}
	return "*", nil, nil
}

var (
	_ Columnar   = Column{}
	_ Expression = Column{}
	_ Expression = Star{}
)
