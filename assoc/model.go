package assoc

import (
	"fmt"
	"strings"
)

// Model is the association table of one entity, keyed by table name.
type Model struct {
	Table      string
	PrimaryKey string

	declared map[string]*Reflection
	joins    map[string]*Reflection
	order    []string
}

// NewModel creates a model whose primary key defaults to "id".
func NewModel(table string) *Model {
	return &Model{
		Table:      table,
		PrimaryKey: "id",
		declared:   make(map[string]*Reflection),
		joins:      make(map[string]*Reflection),
	}
}

func (m *Model) add(r *Reflection, join *Reflection) *Reflection {
	if _, ok := m.declared[r.Name]; !ok {
		m.order = append(m.order, r.Name)
	}
	m.declared[r.Name] = r
	m.joins[r.Name] = join
	return r
}

// BelongsTo declares that m's rows reference one target row through
// foreignKey. An empty foreignKey defaults to "<name>_id".
func (m *Model) BelongsTo(name, target, foreignKey string) *Reflection {
	if foreignKey == "" {
		foreignKey = name + "_id"
	}
	r := &Reflection{
		Name:       name,
		Kind:       BelongsTo,
		Source:     m.Table,
		Target:     target,
		ForeignKey: foreignKey,
		PrimaryKey: "id",
	}
	return m.add(r, r)
}

// HasOne declares a single dependent row in target. An empty foreignKey
// defaults to "<singular source>_id".
func (m *Model) HasOne(name, target, foreignKey string) *Reflection {
	r := m.dependent(HasOne, name, target, foreignKey)
	return m.add(r, r)
}

// HasMany declares dependent rows in target.
func (m *Model) HasMany(name, target, foreignKey string) *Reflection {
	r := m.dependent(HasMany, name, target, foreignKey)
	return m.add(r, r)
}

func (m *Model) dependent(kind Kind, name, target, foreignKey string) *Reflection {
	if foreignKey == "" {
		foreignKey = Singular(m.Table) + "_id"
	}
	return &Reflection{
		Name:       name,
		Kind:       kind,
		Source:     m.Table,
		Target:     target,
		ForeignKey: foreignKey,
		PrimaryKey: m.PrimaryKey,
	}
}

// ManyToMany declares rows linked through joinTable. Empty key names default
// to "<singular source>_id" and "<singular target>_id". An empty joinTable
// defaults to the two table names sorted and joined by "_".
//
// The join tree uses a reflection derived from the declared one, so DSL
// references (which carry the declared reflection) match it only through
// ParentReflection.
func (m *Model) ManyToMany(name, target, joinTable, foreignKey, associationForeignKey string) *Reflection {
	if joinTable == "" {
		a, b := m.Table, target
		if b < a {
			a, b = b, a
		}
		joinTable = a + "_" + b
	}
	if foreignKey == "" {
		foreignKey = Singular(m.Table) + "_id"
	}
	if associationForeignKey == "" {
		associationForeignKey = Singular(target) + "_id"
	}
	r := &Reflection{
		Name:                  name,
		Kind:                  ManyToMany,
		Source:                m.Table,
		Target:                target,
		ForeignKey:            foreignKey,
		PrimaryKey:            m.PrimaryKey,
		JoinTable:             joinTable,
		AssociationForeignKey: associationForeignKey,
	}
	return m.add(r, r.Derive())
}

// Through declares name as the composition of the through association on m
// and source declared on the through association's target model.
func (m *Model) Through(name string, through, source *Reflection) (*Reflection, error) {
	if through == nil || through.Source != m.Table {
		return nil, fmt.Errorf("assoc: %s.%s: through association must be declared on %s", m.Table, name, m.Table)
	}
	if source == nil || source.Source != through.Target {
		return nil, fmt.Errorf("assoc: %s.%s: source association must be declared on %s", m.Table, name, through.Target)
	}
	r := &Reflection{
		Name:             name,
		Kind:             HasManyThrough,
		Source:           m.Table,
		Target:           source.Target,
		Through:          through,
		SourceReflection: source,
	}
	return m.add(r, r), nil
}

// Reflect returns the declared reflection for name.
func (m *Model) Reflect(name string) (*Reflection, error) {
	if r, ok := m.declared[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownAssociation, m.Table, name)
}

// JoinReflection returns the reflection join trees are built from. It
// differs from Reflect only for many-to-many declarations.
func (m *Model) JoinReflection(name string) (*Reflection, error) {
	if r, ok := m.joins[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownAssociation, m.Table, name)
}

// Associations returns declared association names in declaration order.
func (m *Model) Associations() []string {
	return append([]string(nil), m.order...)
}

// Singular strips a plural suffix from a table name: "categories" ->
// "category", "addresses" -> "address", "users" -> "user".
func Singular(table string) string {
	switch {
	case strings.HasSuffix(table, "ies"):
		return strings.TrimSuffix(table, "ies") + "y"
	case strings.HasSuffix(table, "sses"), strings.HasSuffix(table, "xes"):
		return strings.TrimSuffix(table, "es")
	case strings.HasSuffix(table, "ss"):
		return table
	case strings.HasSuffix(table, "s"):
		return strings.TrimSuffix(table, "s")
	}
	return table
}
