package joindep

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/clause"
)

// ErrUnsupportedJoin is returned for join specs no partition can handle.
var ErrUnsupportedJoin = errors.New("joindep: unsupported join spec")

// Build constructs the join tree for a query on base from the association
// joins in g. Tables referenced by g's JoinNode and StringJoin buckets are
// reserved before aliases are handed out, so association joins never reuse
// their names.
func Build(registry *assoc.Registry, base string, g Grouping) (*Tree, error) {
	model, err := registry.Lookup(base)
	if err != nil {
		return nil, err
	}

	b := &builder{registry: registry}
	root := &Node{Table: &clause.Table{Name: base}}
	for _, spec := range g[AssociationJoin] {
		if err := b.add(root, model, spec, clause.InnerJoin); err != nil {
			return nil, err
		}
	}

	tracker := newAliasTracker(base)
	for _, spec := range g[JoinNode] {
		if j, ok := spec.(clause.Join); ok {
			tracker.reserve(j.Table)
		}
	}
	for _, spec := range g[StringJoin] {
		if e, ok := spec.(clause.Expr); ok {
			for _, t := range stringJoinTables(e.SQL) {
				tracker.reserve(t)
			}
		}
	}
	if err := b.alias(root, tracker); err != nil {
		return nil, err
	}
	return &Tree{Root: root}, nil
}

type builder struct {
	registry *assoc.Registry
}

func (b *builder) add(parent *Node, model *assoc.Model, spec Spec, typ clause.JoinType) error {
	switch v := spec.(type) {
	case nil:
		return nil
	case string:
		_, err := b.child(parent, model, v, typ)
		return err
	case []string:
		for _, name := range v {
			if _, err := b.child(parent, model, name, typ); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range v {
			if err := b.add(parent, model, item, typ); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		// Go maps are unordered; sorted keys keep aliases stable between builds.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child, err := b.child(parent, model, k, typ)
			if err != nil {
				return err
			}
			if v[k] == nil {
				continue
			}
			next, err := b.registry.Target(child.Reflection)
			if err != nil {
				return err
			}
			if err := b.add(child, next, v[k], typ); err != nil {
				return err
			}
		}
		return nil
	case DSLJoin:
		if f, ok := v.(interface{ Err() error }); ok {
			if err := f.Err(); err != nil {
				return err
			}
		}
		path := v.JoinPath()
		if len(path) == 0 {
			return fmt.Errorf("%w: empty DSL join path", ErrUnsupportedJoin)
		}
		node, current := parent, model
		for i, ref := range path {
			if ref.Source != current.Table {
				return fmt.Errorf("%w: %s is not an association of %s", ErrUnsupportedJoin, ref, current.Table)
			}
			hopType := clause.InnerJoin
			if i == len(path)-1 {
				hopType = v.JoinType()
			}
			child, err := b.child(node, current, ref.Name, hopType)
			if err != nil {
				return err
			}
			node = child
			if i < len(path)-1 {
				if current, err = b.registry.Target(child.Reflection); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedJoin, spec)
	}
}

// child returns parent's node for the named association, adding it if the
// association has not been joined under parent yet. The first join type
// recorded for a node wins.
func (b *builder) child(parent *Node, model *assoc.Model, name string, typ clause.JoinType) (*Node, error) {
	ref, err := model.JoinReflection(name)
	if err != nil {
		return nil, err
	}
	if c := parent.Child(ref); c != nil {
		return c, nil
	}
	c := &Node{Reflection: ref, Type: typ}
	parent.Children = append(parent.Children, c)
	return c, nil
}

func (b *builder) alias(parent *Node, tracker *aliasTracker) error {
	for _, c := range parent.Children {
		steps, table, err := b.hop(c.Reflection, *parent.Table, c.Type, tracker)
		if err != nil {
			return err
		}
		c.steps = steps
		c.Table = &table
		if err := b.alias(c, tracker); err != nil {
			return err
		}
	}
	return nil
}

// hop renders the joins that reach ref's target from parent.
func (b *builder) hop(ref *assoc.Reflection, parent clause.Table, typ clause.JoinType, tracker *aliasTracker) ([]clause.Join, clause.Table, error) {
	candidate := ref.Name + "_" + parent.Name
	switch ref.Kind {
	case assoc.BelongsTo:
		t := tracker.table(ref.Target, candidate)
		on := clause.Eq(t.Col(ref.PrimaryKey), parent.Col(ref.ForeignKey))
		return []clause.Join{{Type: typ, Table: t, On: on}}, t, nil

	case assoc.HasOne, assoc.HasMany:
		t := tracker.table(ref.Target, candidate)
		on := clause.Eq(t.Col(ref.ForeignKey), parent.Col(ref.PrimaryKey))
		return []clause.Join{{Type: typ, Table: t, On: on}}, t, nil

	case assoc.ManyToMany:
		link := tracker.table(ref.JoinTable, candidate+"_join")
		t := tracker.table(ref.Target, candidate)
		return []clause.Join{
			{Type: typ, Table: link, On: clause.Eq(link.Col(ref.ForeignKey), parent.Col(ref.PrimaryKey))},
			{Type: typ, Table: t, On: clause.Eq(t.Col(b.primaryKey(ref.Target)), link.Col(ref.AssociationForeignKey))},
		}, t, nil

	case assoc.HasManyThrough:
		first, mid, err := b.hop(ref.Through, parent, typ, tracker)
		if err != nil {
			return nil, clause.Table{}, err
		}
		second, t, err := b.hop(ref.SourceReflection, mid, typ, tracker)
		if err != nil {
			return nil, clause.Table{}, err
		}
		return append(first, second...), t, nil
	}
	return nil, clause.Table{}, fmt.Errorf("%w: association kind %s", ErrUnsupportedJoin, ref.Kind)
}

func (b *builder) primaryKey(table string) string {
	if m, err := b.registry.Lookup(table); err == nil && m.PrimaryKey != "" {
		return m.PrimaryKey
	}
	return "id"
}

// aliasTracker hands out table aliases. The first use of a table keeps the
// table's own name; later uses take the association candidate
// "<association>_<parent table>", suffixed "_2", "_3"... once that is taken.
type aliasTracker struct {
	counts map[string]int
}

func newAliasTracker(base string) *aliasTracker {
	return &aliasTracker{counts: map[string]int{base: 1}}
}

func (a *aliasTracker) reserve(t clause.Table) {
	a.counts[t.Ref()]++
}

func (a *aliasTracker) table(name, candidate string) clause.Table {
	if a.counts[name] == 0 {
		a.counts[name] = 1
		return clause.Table{Name: name}
	}
	a.counts[candidate]++
	alias := candidate
	if n := a.counts[candidate]; n > 1 {
		alias = fmt.Sprintf("%s_%d", candidate, n)
	}
	return clause.Table{Name: name, Alias: alias}
}

// joinKeywords end a table reference in a SQL join fragment.
var joinKeywords = map[string]bool{
	"ON": true, "USING": true, "JOIN": true, "INNER": true, "LEFT": true,
	"RIGHT": true, "FULL": true, "OUTER": true, "CROSS": true, "NATURAL": true,
	"WHERE": true,
}

// stringJoinTables returns the tables a SQL join fragment joins: the
// identifier after each JOIN keyword, with the alias that follows it.
// Derived tables ("JOIN (SELECT ...) x") are skipped.
func stringJoinTables(sql string) []clause.Table {
	toks := strings.Fields(sql)
	var tables []clause.Table
	for i := 0; i < len(toks)-1; i++ {
		if !strings.EqualFold(toks[i], "JOIN") || strings.HasPrefix(toks[i+1], "(") {
			continue
		}
		t := clause.Table{Name: unquoteIdent(toks[i+1])}
		next := i + 2
		if next < len(toks) && strings.EqualFold(toks[next], "AS") {
			next++
		}
		if next < len(toks) && !joinKeywords[strings.ToUpper(toks[next])] {
			t.Alias = unquoteIdent(toks[next])
		}
		if t.Name != "" {
			tables = append(tables, t)
		}
	}
	return tables
}

func unquoteIdent(s string) string {
	return strings.Trim(s, "\"`[],;")
}
