package squeal

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arllen133/squeal/assoc"
)

// Session owns the database handle, the dialect, the association registry
// queries plan their joins from, and observability settings.
type Session struct {
	db       *sqlx.DB
	dialect  Dialect
	registry *assoc.Registry
	obs      *ObservabilityConfig
}

func NewSession(db *sql.DB, dialect Dialect, opts ...SessionOption) *Session {
	s := &Session{
		db:       sqlx.NewDb(db, dialect.Name()),
		dialect:  dialect,
		registry: defaultRegistry,
		obs:      defaultObservabilityConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithRegistry makes the session plan joins from reg instead of the
// registry RegisterSchema writes to.
func WithRegistry(reg *assoc.Registry) SessionOption {
	return func(s *Session) {
		s.registry = reg
	}
}

func (s *Session) Dialect() Dialect { return s.dialect }

func (s *Session) Registry() *assoc.Registry { return s.registry }

// Select runs a raw query and scans every row into dest.
func (s *Session) Select(ctx context.Context, dest any, query string, args ...any) error {
	return s.run(ctx, "select", query, nil, func(ctx context.Context) error {
		return s.db.SelectContext(ctx, dest, query, args...)
	})
}

// Get runs a raw query and scans a single row into dest.
func (s *Session) Get(ctx context.Context, dest any, query string, args ...any) error {
	err := s.run(ctx, "get", query, nil, func(ctx context.Context) error {
		return s.db.GetContext(ctx, dest, query, args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Session) selectCompiled(ctx context.Context, dest any, c *compiled) error {
	return s.run(ctx, "select", c.sql, c, func(ctx context.Context) error {
		return s.db.SelectContext(ctx, dest, c.sql, c.args...)
	})
}

func (s *Session) getCompiled(ctx context.Context, dest any, c *compiled) error {
	return s.run(ctx, "get", c.sql, c, func(ctx context.Context) error {
		return s.db.GetContext(ctx, dest, c.sql, c.args...)
	})
}

// run executes fn inside a client span and records metrics and logs for
// it. c is nil for raw statements.
func (s *Session) run(ctx context.Context, operation, query string, c *compiled, fn func(ctx context.Context) error) error {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", s.dialect.Name()),
		attribute.String("db.statement", query),
	}
	var logAttrs []slog.Attr
	if c != nil {
		attrs = append(attrs,
			attribute.String("squeal.build_id", c.id.String()),
			attribute.Int("squeal.alias.best_effort", c.bestEffort),
		)
		logAttrs = append(logAttrs, slog.String("build_id", c.id.String()))
	}
	ctx, span := s.startSpan(ctx, "squeal."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.recordMetrics(ctx, operation, duration, err)
	s.logQuery(ctx, operation, query, duration, err, logAttrs...)
	return err
}
