package squeal_test

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/arllen133/squeal"
	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/field"
)

// -- Shop models shared by the root package tests --
//
//	users -< orders -< line_items
//	orders >- users (customer)
//	users -< comments
//	users -< purchased_items (through orders -> line_items)

type User struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Order struct {
	ID     int64   `db:"id"`
	UserID int64   `db:"user_id"`
	Total  float64 `db:"total"`
}

type LineItem struct {
	ID      int64  `db:"id"`
	OrderID int64  `db:"order_id"`
	SKU     string `db:"sku"`
	Qty     int64  `db:"qty"`
}

type Comment struct {
	ID     int64  `db:"id"`
	UserID int64  `db:"user_id"`
	Body   string `db:"body"`
}

type UserSchema struct{}

func (UserSchema) TableName() string       { return "users" }
func (UserSchema) SelectColumns() []string { return []string{"id", "name"} }
func (UserSchema) Associations(m *assoc.Model) {
	m.HasMany("orders", "orders", "")
	m.HasMany("comments", "comments", "")
}

type OrderSchema struct{}

func (OrderSchema) TableName() string       { return "orders" }
func (OrderSchema) SelectColumns() []string { return []string{"id", "user_id", "total"} }
func (OrderSchema) Associations(m *assoc.Model) {
	m.HasMany("line_items", "line_items", "")
	m.BelongsTo("customer", "users", "user_id")
}

type LineItemSchema struct{}

func (LineItemSchema) TableName() string       { return "line_items" }
func (LineItemSchema) SelectColumns() []string { return []string{"id", "order_id", "sku", "qty"} }
func (LineItemSchema) Associations(m *assoc.Model) {
	m.BelongsTo("order", "orders", "")
}

type CommentSchema struct{}

func (CommentSchema) TableName() string       { return "comments" }
func (CommentSchema) SelectColumns() []string { return []string{"id", "user_id", "body"} }

var Users = struct {
	ID   field.Number[int64]
	Name field.String
}{
	ID:   field.Number[int64]{}.WithColumn("id").WithTable("users"),
	Name: field.String{}.WithColumn("name").WithTable("users"),
}

var Orders = struct {
	ID     field.Number[int64]
	UserID field.Number[int64]
	Total  field.Number[float64]
}{
	ID:     field.Number[int64]{}.WithColumn("id").WithTable("orders"),
	UserID: field.Number[int64]{}.WithColumn("user_id").WithTable("orders"),
	Total:  field.Number[float64]{}.WithColumn("total").WithTable("orders"),
}

func init() {
	squeal.RegisterSchema[User](UserSchema{})
	squeal.RegisterSchema[Order](OrderSchema{})
	squeal.RegisterSchema[LineItem](LineItemSchema{})
	squeal.RegisterSchema[Comment](CommentSchema{})

	orders := squeal.DefineTable("orders", nil)
	lineItems, err := orders.Reflect("line_items")
	if err != nil {
		panic(err)
	}
	squeal.DefineTable("users", func(m *assoc.Model) {
		through, err := m.Reflect("orders")
		if err != nil {
			panic(err)
		}
		if _, err := m.Through("purchased_items", through, lineItems); err != nil {
			panic(err)
		}
	})
}

const shopDDL = `
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL, total REAL NOT NULL);
CREATE TABLE line_items (id INTEGER PRIMARY KEY, order_id INTEGER NOT NULL, sku TEXT NOT NULL, qty INTEGER NOT NULL);
CREATE TABLE comments (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL, body TEXT NOT NULL);
`

const shopData = `
INSERT INTO users (id, name) VALUES (1, 'alice'), (2, 'bob'), (3, 'carol');
INSERT INTO orders (id, user_id, total) VALUES (10, 1, 30.5), (11, 1, 12), (12, 2, 99);
INSERT INTO line_items (id, order_id, sku, qty) VALUES (100, 10, 'A-1', 2), (101, 10, 'B-2', 1), (102, 12, 'A-1', 5);
INSERT INTO comments (id, user_id, body) VALUES (1000, 3, 'hi');
`

// setupTestDB opens the database named by TEST_DRIVER/TEST_DSN, defaulting
// to in-memory SQLite, and loads the shop fixtures. Drivers: sqlite3
// (go-sqlite3), sqlite (modernc), mysql, postgres (lib/pq), pgx.
func setupTestDB(t *testing.T, opts ...squeal.SessionOption) (*sql.DB, *squeal.Session) {
	t.Helper()
	driver := os.Getenv("TEST_DRIVER")
	dsn := os.Getenv("TEST_DSN")

	if driver == "" {
		driver = "sqlite3"
		dsn = ":memory:"
	}

	db, err := sql.Open(driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// Every :memory: connection is a separate database.
	db.SetMaxOpenConns(1)

	var dialect squeal.Dialect
	switch driver {
	case "mysql":
		dialect = squeal.MySQL
	case "postgres", "pgx":
		dialect = squeal.PostgreSQL
	default:
		dialect = squeal.SQLite
	}

	for _, stmt := range []string{shopDDL, shopData} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	return db, squeal.NewSession(db, dialect, opts...)
}

// genSession is a session for tests that only render SQL.
func genSession(dialect squeal.Dialect, opts ...squeal.SessionOption) *squeal.Session {
	return squeal.NewSession(nil, dialect, opts...)
}
