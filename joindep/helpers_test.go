package joindep_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/clause"
	"github.com/arllen133/squeal/joindep"
)

type ref struct {
	r *assoc.Reflection
}

func (r ref) Reflection() *assoc.Reflection { return r.r }

type dslJoin struct {
	path []*assoc.Reflection
	typ  clause.JoinType
	err  error
}

func (j dslJoin) JoinPath() []*assoc.Reflection { return j.path }
func (j dslJoin) JoinType() clause.JoinType     { return j.typ }
func (j dslJoin) Err() error                    { return j.err }

// testRegistry models a small shop:
//
//	users  -< orders -< line_items, orders >- users (customer)
//	users  -< comments, users -< posts, posts >-< tags
//	users  -< purchased_items (through orders -> line_items)
func testRegistry(t *testing.T) *assoc.Registry {
	t.Helper()
	reg := assoc.NewRegistry()
	var orders, lineItems *assoc.Reflection
	reg.Define("users", func(m *assoc.Model) {
		orders = m.HasMany("orders", "orders", "")
		m.HasMany("comments", "comments", "")
		m.HasMany("posts", "posts", "")
	})
	reg.Define("orders", func(m *assoc.Model) {
		lineItems = m.HasMany("line_items", "line_items", "")
		m.BelongsTo("customer", "users", "user_id")
	})
	reg.Define("posts", func(m *assoc.Model) {
		m.ManyToMany("tags", "tags", "", "", "")
		m.BelongsTo("author", "users", "user_id")
	})
	reg.Define("line_items", nil)
	reg.Define("comments", nil)
	reg.Define("tags", nil)
	reg.Define("users", func(m *assoc.Model) {
		_, err := m.Through("purchased_items", orders, lineItems)
		require.NoError(t, err)
	})
	return reg
}

// path returns the declared reflections reached from base through names.
func path(t *testing.T, reg *assoc.Registry, base string, names ...string) []*assoc.Reflection {
	t.Helper()
	model, err := reg.Lookup(base)
	require.NoError(t, err)
	out := make([]*assoc.Reflection, 0, len(names))
	for i, name := range names {
		r, err := model.Reflect(name)
		require.NoError(t, err)
		out = append(out, r)
		if i < len(names)-1 {
			model, err = reg.Lookup(r.Target)
			require.NoError(t, err)
		}
	}
	return out
}

func chain(reflections ...*assoc.Reflection) []joindep.Reference {
	out := make([]joindep.Reference, len(reflections))
	for i, r := range reflections {
		out[i] = ref{r}
	}
	return out
}

func clauseSQL(t *testing.T, tree *joindep.Tree) []string {
	t.Helper()
	var out []string
	for _, j := range tree.Clauses() {
		sql, _, err := j.Build()
		require.NoError(t, err)
		out = append(out, sql)
	}
	return out
}
