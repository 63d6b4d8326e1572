package benchmarks

import (
	"testing"

	"github.com/arllen133/squeal"
	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/dsl"
)

type BenchUser struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type BenchUserSchema struct{}

func (BenchUserSchema) TableName() string       { return "bench_users" }
func (BenchUserSchema) SelectColumns() []string { return []string{"id", "name"} }
func (BenchUserSchema) Associations(m *assoc.Model) {
	m.HasMany("orders", "bench_orders", "user_id")
}

type BenchOrder struct {
	ID     int64 `db:"id"`
	UserID int64 `db:"user_id"`
}

type BenchOrderSchema struct{}

func (BenchOrderSchema) TableName() string       { return "bench_orders" }
func (BenchOrderSchema) SelectColumns() []string { return []string{"id", "user_id"} }
func (BenchOrderSchema) Associations(m *assoc.Model) {
	m.BelongsTo("customer", "bench_users", "user_id")
}

func init() {
	squeal.RegisterSchema[BenchUser](BenchUserSchema{})
	squeal.RegisterSchema[BenchOrder](BenchOrderSchema{})
}

var resultSQL string

func BenchmarkToSQL_NativeJoins(b *testing.B) {
	session := squeal.NewSession(nil, squeal.SQLite)
	for b.Loop() {
		sql, _, err := squeal.Query[BenchUser](session).
			Joins(map[string]any{"orders": "customer"}).
			ToSQL()
		if err != nil {
			b.Fatal(err)
		}
		resultSQL = sql
	}
}

func BenchmarkToSQL_DSL(b *testing.B) {
	session := squeal.NewSession(nil, squeal.PostgreSQL)
	for b.Loop() {
		sql, _, err := squeal.Query[BenchUser](session).
			Joining(func(s *dsl.Scope) any { return s.Assoc("orders").Assoc("customer") }).
			Filtering(func(s *dsl.Scope) any {
				return s.Assoc("orders").Assoc("customer").Col("name").Eq("alice")
			}).
			ToSQL()
		if err != nil {
			b.Fatal(err)
		}
		resultSQL = sql
	}
}
