package squeal

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/arllen133/squeal"

// Metrics holds the OpenTelemetry instruments a session records to.
type Metrics struct {
	QueryCount    metric.Int64Counter
	QueryDuration metric.Float64Histogram
	QueryErrors   metric.Int64Counter
	// BestEffortAliases counts association columns qualified with their
	// target table because the join tree had no table for them.
	BestEffortAliases metric.Int64Counter
}

// ObservabilityConfig holds logging, tracing, and metrics configuration.
// Nil fields switch the corresponding signal off.
type ObservabilityConfig struct {
	Logger             *slog.Logger
	Tracer             trace.Tracer
	Meter              metric.Meter
	Metrics            *Metrics
	SlowQueryThreshold time.Duration
	LogQueries         bool // include statements in logs and log every query at debug
}

func defaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{SlowQueryThreshold: 200 * time.Millisecond}
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithLogger sets the logger for query logs and best-effort alias warnings.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.obs.Logger = logger
	}
}

func WithTracer(tracer trace.Tracer) SessionOption {
	return func(s *Session) {
		s.obs.Tracer = tracer
	}
}

// WithDefaultTracer uses the global OpenTelemetry tracer provider.
func WithDefaultTracer() SessionOption {
	return WithTracer(otel.Tracer(instrumentationName))
}

func WithMeter(meter metric.Meter) SessionOption {
	return func(s *Session) {
		s.obs.Meter = meter
		s.obs.Metrics = initMetrics(meter)
	}
}

// WithDefaultMeter uses the global OpenTelemetry meter provider.
func WithDefaultMeter() SessionOption {
	return WithMeter(otel.Meter(instrumentationName))
}

// WithSlowQueryThreshold sets the duration above which queries are logged
// as slow.
func WithSlowQueryThreshold(d time.Duration) SessionOption {
	return func(s *Session) {
		s.obs.SlowQueryThreshold = d
	}
}

// WithQueryLogging enables logging of all queries
func WithQueryLogging(enabled bool) SessionOption {
	return func(s *Session) {
		s.obs.LogQueries = enabled
	}
}

// initMetrics creates the instruments. Instrument errors leave no-op
// instruments behind, so they are ignored.
func initMetrics(meter metric.Meter) *Metrics {
	queryCount, _ := meter.Int64Counter("squeal.query.count",
		metric.WithDescription("Total number of SQL queries executed"),
		metric.WithUnit("{query}"),
	)
	queryDuration, _ := meter.Float64Histogram("squeal.query.duration",
		metric.WithDescription("Query execution duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	queryErrors, _ := meter.Int64Counter("squeal.query.errors",
		metric.WithDescription("Total number of query errors"),
		metric.WithUnit("{error}"),
	)
	bestEffort, _ := meter.Int64Counter("squeal.alias.best_effort",
		metric.WithDescription("Association columns qualified with a best-effort table alias"),
		metric.WithUnit("{alias}"),
	)
	return &Metrics{
		QueryCount:        queryCount,
		QueryDuration:     queryDuration,
		QueryErrors:       queryErrors,
		BestEffortAliases: bestEffort,
	}
}

// spanWrapper lets callers use a span without checking whether tracing is
// enabled.
type spanWrapper struct {
	span trace.Span
}

func (w spanWrapper) End() {
	if w.span != nil {
		w.span.End()
	}
}

func (w spanWrapper) RecordError(err error) {
	if w.span != nil {
		w.span.RecordError(err)
	}
}

func (w spanWrapper) SetStatus(code codes.Code, description string) {
	if w.span != nil {
		w.span.SetStatus(code, description)
	}
}

func (s *Session) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, spanWrapper) {
	if s.obs.Tracer == nil {
		return ctx, spanWrapper{}
	}
	ctx, span := s.obs.Tracer.Start(ctx, name, opts...)
	return ctx, spanWrapper{span}
}

func (s *Session) recordMetrics(ctx context.Context, operation string, duration time.Duration, err error) {
	if s.obs.Metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.system", s.dialect.Name()),
	)
	s.obs.Metrics.QueryCount.Add(ctx, 1, attrs)
	s.obs.Metrics.QueryDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		s.obs.Metrics.QueryErrors.Add(ctx, 1, attrs)
	}
}

// recordBestEffort counts the best-effort aliases of one query build.
func (s *Session) recordBestEffort(ctx context.Context, table string, n int) {
	if s.obs.Metrics == nil || n == 0 {
		return
	}
	s.obs.Metrics.BestEffortAliases.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("db.system", s.dialect.Name()),
		attribute.String("db.table", table),
	))
}

// logQuery logs failed and slow queries, and every query when LogQueries is
// set.
func (s *Session) logQuery(ctx context.Context, operation, query string, duration time.Duration, err error, extra ...slog.Attr) {
	if s.obs.Logger == nil {
		return
	}

	attrs := append([]slog.Attr{
		slog.String("operation", operation),
		slog.Duration("duration", duration),
	}, extra...)
	if s.obs.LogQueries {
		attrs = append(attrs, slog.String("query", query))
	}

	switch {
	case err != nil:
		s.obs.Logger.LogAttrs(ctx, slog.LevelError, "query failed", append(attrs, slog.String("error", err.Error()))...)
	case duration > s.obs.SlowQueryThreshold:
		s.obs.Logger.LogAttrs(ctx, slog.LevelWarn, "slow query", attrs...)
	case s.obs.LogQueries:
		s.obs.Logger.LogAttrs(ctx, slog.LevelDebug, "query executed", attrs...)
	}
}
