// Package squeal builds SELECT queries over registered models, joining
// associations by name or through the expression DSL in package dsl.
//
// Usage example:
//
//	users, err := squeal.Query[User](session).
//	    Joining(func(s *dsl.Scope) any {
//	        return s.Assoc("orders").Assoc("line_items").Outer()
//	    }).
//	    Filtering(func(s *dsl.Scope) any {
//	        return s.Assoc("orders").Assoc("line_items").Col("sku").Eq("A-1")
//	    }).
//	    Find(ctx)
package squeal

import (
	sq "github.com/Masterminds/squirrel"
)

var (
	SQLite     = SQLiteDialect{}
	MySQL      = MySQLDialect{}
	PostgreSQL = PostgreSQLDialect{}
)

// Dialect captures the database differences the query builder cares about.
type Dialect interface {
	// Name is the database/sql driver name, also reported as db.system.
	Name() string

	// PlaceholderFormat rewrites "?" placeholders for the database.
	PlaceholderFormat() sq.PlaceholderFormat

	// SupportsFullJoin reports whether FULL OUTER JOIN is available.
	SupportsFullJoin() bool
}

type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (MySQLDialect) SupportsFullJoin() bool { return false }

type PostgreSQLDialect struct{}

func (PostgreSQLDialect) Name() string { return "postgres" }

func (PostgreSQLDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Dollar
}

func (PostgreSQLDialect) SupportsFullJoin() bool { return true }

type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite3" }

func (SQLiteDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

// SupportsFullJoin is true for the SQLite bundled with go-sqlite3 (3.39+).
func (SQLiteDialect) SupportsFullJoin() bool { return true }
