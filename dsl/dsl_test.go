package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/clause"
	"github.com/arllen133/squeal/dsl"
	"github.com/arllen133/squeal/joindep"
)

func registry() *assoc.Registry {
	reg := assoc.NewRegistry()
	reg.Define("users", func(m *assoc.Model) {
		m.HasMany("orders", "orders", "")
		m.HasMany("comments", "comments", "")
	})
	reg.Define("orders", func(m *assoc.Model) {
		m.HasMany("line_items", "line_items", "")
		m.BelongsTo("customer", "users", "user_id")
	})
	reg.Define("line_items", nil)
	reg.Define("comments", nil)
	return reg
}

// scopeWithJoins returns a scope whose association columns resolve against
// a tree built from specs.
func scopeWithJoins(t *testing.T, reg *assoc.Registry, specs ...joindep.Spec) *dsl.Scope {
	t.Helper()
	s, err := dsl.NewScope(reg, "users", func() (dsl.AliasResolver, error) {
		tree, err := joindep.Build(reg, "users", joindep.Classify(specs, func(joindep.Spec) joindep.Bucket {
			return joindep.AssociationJoin
		}))
		if err != nil {
			return nil, err
		}
		return joindep.NewResolver(tree), nil
	})
	require.NoError(t, err)
	return s
}

func buildSQL(t *testing.T, e clause.Expression) (string, []any) {
	t.Helper()
	sql, args, err := e.Build()
	require.NoError(t, err)
	return sql, args
}

func TestAttributesResolveAliases(t *testing.T) {
	reg := registry()
	s := scopeWithJoins(t, reg, map[string]any{"orders": []any{"customer", "line_items"}})

	sql, args := buildSQL(t, clause.And{
		s.Assoc("orders").Assoc("customer").Col("name").Eq("ann"),
		s.Assoc("orders").Col("total").Gt(10),
		s.Col("active").Eq(true),
	})
	assert.Equal(t, "(customer_orders.name = ?) AND (orders.total > ?) AND (users.active = ?)", sql)
	assert.Equal(t, []any{"ann", 10, true}, args)

	sql, _ = buildSQL(t, s.Assoc("orders").Assoc("line_items").Col("sku").Eq(s.Col("favorite_sku")))
	assert.Equal(t, "line_items.sku = users.favorite_sku", sql)
}

func TestAttributeNotJoined(t *testing.T) {
	reg := registry()
	s := scopeWithJoins(t, reg, "orders")

	_, _, err := s.Assoc("comments").Col("body").Like("%x%").Build()
	assert.ErrorIs(t, err, joindep.ErrAssociationNotJoined)
}

func TestAttributeWithoutResolver(t *testing.T) {
	s, err := dsl.NewScope(registry(), "users", nil)
	require.NoError(t, err)

	sql, _ := buildSQL(t, s.Col("id").Desc())
	assert.Equal(t, "users.id DESC", sql)

	_, _, err = s.Assoc("orders").Col("id").Build()
	assert.ErrorIs(t, err, dsl.ErrNoResolver)
}

func TestEvaluateReportsUnknownAssociation(t *testing.T) {
	s, err := dsl.NewScope(registry(), "users", nil)
	require.NoError(t, err)

	v, err := dsl.Evaluate(s, func(s *dsl.Scope) any {
		return s.Assoc("orders").Assoc("refunds").Outer()
	})
	assert.Nil(t, v)
	assert.ErrorIs(t, err, assoc.ErrUnknownAssociation)
}

func TestJoinNodes(t *testing.T) {
	reg := registry()
	s, err := dsl.NewScope(reg, "users", nil)
	require.NoError(t, err)

	v, err := dsl.Evaluate(s, func(s *dsl.Scope) any {
		return s.Assoc("orders").Assoc("line_items").Outer()
	})
	require.NoError(t, err)

	j, ok := v.(joindep.DSLJoin)
	require.True(t, ok)
	assert.Equal(t, clause.LeftJoin, j.JoinType())
	require.Len(t, j.JoinPath(), 2)
	assert.Equal(t, "users.orders", j.JoinPath()[0].String())
	assert.Equal(t, "orders.line_items", j.JoinPath()[1].String())

	got := joindep.Classify([]joindep.Spec{v}, func(joindep.Spec) joindep.Bucket { return joindep.Unknown })
	assert.Equal(t, []joindep.Spec{v}, got[joindep.AssociationJoin])
}

func TestFunctions(t *testing.T) {
	reg := registry()
	s := scopeWithJoins(t, reg, "orders")

	tests := []struct {
		name string
		expr clause.Expression
		want string
	}{
		{"count star", s.Count(), "COUNT(*)"},
		{"count distinct", s.Count(s.Assoc("orders").Col("id")).Distinct().As("n"), "COUNT(DISTINCT orders.id) AS n"},
		{"sum desc", s.Sum(s.Assoc("orders").Col("total")).Desc(), "SUM(orders.total) DESC"},
		{"having", s.Max(s.Assoc("orders").Col("total")).Gte(100), "MAX(orders.total) >= ?"},
		{"coalesce", s.Func("COALESCE", s.Col("nickname"), "anon"), "COALESCE(users.nickname, ?)"},
		{"association star", s.Assoc("orders").Star(), "orders.*"},
		{"base star", s.Star(), "users.*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := buildSQL(t, tt.expr)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestTableRefJoin(t *testing.T) {
	s, err := dsl.NewScope(registry(), "users", nil)
	require.NoError(t, err)

	p := s.Table("profiles").As("p")
	j := p.Outer().On(clause.Eq(p.Col("user_id"), s.Col("id")))

	assert.Equal(t, clause.LeftJoin, j.Type)
	sql, _ := buildSQL(t, j)
	assert.Equal(t, "LEFT JOIN profiles p ON p.user_id = users.id", sql)
}
