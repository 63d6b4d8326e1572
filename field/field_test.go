package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arllen133/squeal/clause"
	"github.com/arllen133/squeal/field"
)

func build(t *testing.T, e clause.Expression) (string, []any) {
	t.Helper()
	sql, args, err := e.Build()
	require.NoError(t, err)
	return sql, args
}

func TestStringField(t *testing.T) {
	username := field.String{}.WithColumn("username").WithTable("users")

	sql, args := build(t, username.Eq("alice"))
	assert.Equal(t, "users.username = ?", sql)
	assert.Equal(t, []any{"alice"}, args)

	sql, _ = build(t, username.Like("%alice%"))
	assert.Equal(t, "users.username LIKE ?", sql)

	sql, args = build(t, username.In("alice", "bob", "charlie"))
	assert.Equal(t, "users.username IN (?, ?, ?)", sql)
	assert.Len(t, args, 3)

	sql, _ = build(t, username.NotIn("eve", "mallory"))
	assert.Equal(t, "NOT (users.username IN (?, ?))", sql)
}

func TestNumberField(t *testing.T) {
	total := field.Number[float64]{}.WithColumn("total").WithTable("orders")

	sql, args := build(t, total.Gt(18))
	assert.Equal(t, "orders.total > ?", sql)
	assert.Equal(t, []any{float64(18)}, args)

	sql, args = build(t, total.Between(10, 20))
	assert.Equal(t, "orders.total BETWEEN ? AND ?", sql)
	assert.Equal(t, []any{float64(10), float64(20)}, args)

	sql, _ = build(t, total.Sum())
	assert.Equal(t, "SUM(orders.total)", sql)
}

func TestFieldOfAlias(t *testing.T) {
	userID := field.Number[int64]{}.WithColumn("user_id").WithTable("orders")
	aliased := clause.Table{Name: "orders", Alias: "orders_users"}

	sql, _ := build(t, userID.Of(aliased).Eq(7))
	assert.Equal(t, "orders_users.user_id = ?", sql)
	assert.Equal(t, "orders.user_id", userID.ColumnName(), "Of must not modify the receiver")

	id := field.Number[int64]{}.WithColumn("id").WithTable("users")
	sql, _ = build(t, userID.Of(aliased).EqCol(id))
	assert.Equal(t, "orders_users.user_id = users.id", sql)
}

func TestFieldOrdering(t *testing.T) {
	createdAt := field.Field{}.WithColumn("created_at")

	sql, _ := build(t, createdAt.Desc())
	assert.Equal(t, "created_at DESC", sql)

	sql, _ = build(t, createdAt.As("ts"))
	assert.Equal(t, "created_at AS ts", sql)

	sql, _ = build(t, createdAt.IsNull())
	assert.Equal(t, "created_at IS NULL", sql)
}
