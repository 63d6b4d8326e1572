package squeal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/arllen133/squeal/clause"
	"github.com/arllen133/squeal/dsl"
	"github.com/arllen133/squeal/joindep"
)

var (
	// ErrNotFound indicates that no record was found.
	ErrNotFound = errors.New("squeal: record not found")

	// ErrFullJoinUnsupported is returned when a FULL OUTER JOIN is rendered
	// for a dialect that has none.
	ErrFullJoinUnsupported = errors.New("squeal: dialect does not support FULL OUTER JOIN")
)

// QueryBuilder is a SQL query builder for model T.
//
// Expressions handed to the builder are kept unrendered until the query is
// built. Each build plans the join tree once and renders every clause
// against that plan, so columns reached through associations always carry
// the alias of the join that actually appears in the statement.
//
//	orders, err := squeal.Query[User](session).
//	    Joins(map[string]any{"orders": "line_items"}).
//	    Where(clause.Gt(clause.Column{Table: "line_items", Name: "qty"}, 1)).
//	    Find(ctx)
//
// A QueryBuilder is not safe for concurrent use.
type QueryBuilder[T any] struct {
	session *Session
	schema  Schema[T]
	table   string

	partition joindep.Partitioner
	joins     []joindep.Spec

	selects  []clause.Expression
	wheres   []clause.Expression
	groups   []clause.Expression
	havings  []clause.Expression
	orders   []clause.Order
	distinct bool
	limit    *uint64
	offset   *uint64

	err   error
	build *buildState
}

// buildState is the plan of the build in progress. DSL attributes resolve
// their aliases through it.
type buildState struct {
	id         uuid.UUID
	grouping   joindep.Grouping
	tree       *joindep.Tree
	resolver   *joindep.Resolver
	bestEffort int
}

// compiled is a rendered statement.
type compiled struct {
	id         uuid.UUID
	sql        string
	args       []any
	bestEffort int
}

// Query creates a QueryBuilder for T. T must be registered with
// RegisterSchema.
func Query[T any](session *Session) *QueryBuilder[T] {
	schema := LoadSchema[T]()
	return &QueryBuilder[T]{
		session:   session,
		schema:    schema,
		table:     schema.TableName(),
		partition: joindep.Classify,
	}
}

// WithPartitioner replaces the step that partitions the join list.
func (q *QueryBuilder[T]) WithPartitioner(p joindep.Partitioner) *QueryBuilder[T] {
	q.partition = p
	return q
}

// Joins adds association joins. Specs are association names, slices of
// them, maps nesting associations of the joined model, raw clause.Join
// values, clause.Expr fragments and DSL join nodes.
//
//	q.Joins("orders", map[string]any{"posts": []string{"tags", "author"}})
func (q *QueryBuilder[T]) Joins(specs ...joindep.Spec) *QueryBuilder[T] {
	q.joins = append(q.joins, specs...)
	return q
}

// LeftJoins joins the named associations of T with LEFT JOIN.
func (q *QueryBuilder[T]) LeftJoins(names ...string) *QueryBuilder[T] {
	if q.err != nil {
		return q
	}
	s, err := q.scope()
	if err != nil {
		q.err = err
		return q
	}
	for _, name := range names {
		a := s.Assoc(name)
		if s.Err() != nil {
			q.err = s.Err()
			return q
		}
		q.joins = append(q.joins, a.Outer())
	}
	return q
}

// Where adds a WHERE condition. Conditions from repeated calls are combined
// with AND.
func (q *QueryBuilder[T]) Where(expr clause.Expression) *QueryBuilder[T] {
	q.wheres = append(q.wheres, expr)
	return q
}

// Select replaces the default column list with exprs. Repeated calls
// accumulate.
func (q *QueryBuilder[T]) Select(exprs ...clause.Expression) *QueryBuilder[T] {
	q.selects = append(q.selects, exprs...)
	return q
}

func (q *QueryBuilder[T]) Distinct() *QueryBuilder[T] {
	q.distinct = true
	return q
}

func (q *QueryBuilder[T]) OrderBy(orders ...clause.Order) *QueryBuilder[T] {
	q.orders = append(q.orders, orders...)
	return q
}

// Reorder discards previous ordering and orders by orders.
func (q *QueryBuilder[T]) Reorder(orders ...clause.Order) *QueryBuilder[T] {
	q.orders = append([]clause.Order(nil), orders...)
	return q
}

// GroupBy adds GROUP BY terms. Terms must not bind parameters.
func (q *QueryBuilder[T]) GroupBy(exprs ...clause.Expression) *QueryBuilder[T] {
	q.groups = append(q.groups, exprs...)
	return q
}

// Having adds a HAVING condition, combined with AND like Where.
func (q *QueryBuilder[T]) Having(expr clause.Expression) *QueryBuilder[T] {
	q.havings = append(q.havings, expr)
	return q
}

func (q *QueryBuilder[T]) Limit(n uint64) *QueryBuilder[T] {
	q.limit = &n
	return q
}

func (q *QueryBuilder[T]) Offset(n uint64) *QueryBuilder[T] {
	q.offset = &n
	return q
}

// Err returns the first error recorded while the query was being
// assembled.
func (q *QueryBuilder[T]) Err() error { return q.err }

// Find executes the query and returns every matching record.
func (q *QueryBuilder[T]) Find(ctx context.Context) ([]*T, error) {
	c, err := q.compile(ctx, q.session.dialect.PlaceholderFormat(), nil, false)
	if err != nil {
		return nil, fmt.Errorf("squeal: failed to build sql: %w", err)
	}
	var results []*T
	if err := q.session.selectCompiled(ctx, &results, c); err != nil {
		return nil, fmt.Errorf("squeal: query failed: %w", err)
	}
	if results == nil {
		results = []*T{}
	}
	return results, nil
}

// Take returns one matching record, or ErrNotFound.
func (q *QueryBuilder[T]) Take(ctx context.Context) (*T, error) {
	limit := q.limit
	q.Limit(1)
	defer func() { q.limit = limit }()

	results, err := q.Find(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0], nil
}

// Scan executes the query into dest, a pointer to a struct slice. Use it
// with Select or Selecting to read projections that do not fit T.
func (q *QueryBuilder[T]) Scan(ctx context.Context, dest any) error {
	c, err := q.compile(ctx, q.session.dialect.PlaceholderFormat(), nil, false)
	if err != nil {
		return fmt.Errorf("squeal: failed to build sql: %w", err)
	}
	if err := q.session.selectCompiled(ctx, dest, c); err != nil {
		return fmt.Errorf("squeal: query failed: %w", err)
	}
	return nil
}

// Pluck reads a single expression into dest, a pointer to a slice.
//
//	var totals []float64
//	q.Joins("orders").Pluck(ctx, clause.Column{Table: "orders", Name: "total"}, &totals)
func (q *QueryBuilder[T]) Pluck(ctx context.Context, expr clause.Expression, dest any) error {
	c, err := q.compile(ctx, q.session.dialect.PlaceholderFormat(), []clause.Expression{expr}, false)
	if err != nil {
		return fmt.Errorf("squeal: failed to build sql: %w", err)
	}
	if err := q.session.selectCompiled(ctx, dest, c); err != nil {
		return fmt.Errorf("squeal: pluck failed: %w", err)
	}
	return nil
}

// Count returns the number of rows the query produces, ignoring LIMIT,
// OFFSET and ORDER BY. Joined rows are counted individually unless the
// query is Distinct, in which case the distinct projection is counted.
func (q *QueryBuilder[T]) Count(ctx context.Context) (int64, error) {
	var (
		c   *compiled
		err error
	)
	if q.distinct {
		c, err = q.compileDistinctCount(ctx)
	} else {
		c, err = q.compile(ctx, q.session.dialect.PlaceholderFormat(), []clause.Expression{countStar}, true)
	}
	if err != nil {
		return 0, fmt.Errorf("squeal: failed to build count sql: %w", err)
	}
	var count int64
	if err := q.session.getCompiled(ctx, &count, c); err != nil {
		return 0, fmt.Errorf("squeal: count failed: %w", err)
	}
	return count, nil
}

var countStar = clause.Func{Name: "COUNT", Args: []clause.Expression{clause.Star{}}}

// compileDistinctCount wraps the DISTINCT select in a derived table and
// counts its rows.
func (q *QueryBuilder[T]) compileDistinctCount(ctx context.Context) (*compiled, error) {
	inner, err := q.compile(ctx, sq.Question, nil, true)
	if err != nil {
		return nil, err
	}
	sql, err := q.session.dialect.PlaceholderFormat().ReplacePlaceholders(
		"SELECT COUNT(*) FROM (" + inner.sql + ") AS distinct_rows")
	if err != nil {
		return nil, err
	}
	inner.sql = sql
	return inner, nil
}

// ToSQL returns the statement in the session dialect's placeholder format
// without executing it.
func (q *QueryBuilder[T]) ToSQL() (string, []any, error) {
	c, err := q.compile(context.Background(), q.session.dialect.PlaceholderFormat(), nil, false)
	if err != nil {
		return "", nil, err
	}
	return c.sql, c.args, nil
}

// Build implements clause.Expression so a query can be nested as a
// subquery. Placeholders are left as "?" for the outer statement to
// number.
func (q *QueryBuilder[T]) Build() (string, []any, error) {
	c, err := q.compile(context.Background(), sq.Question, nil, false)
	if err != nil {
		return "", nil, err
	}
	return c.sql, c.args, nil
}

// AliasFor returns the table reference the join tree assigns to the
// association chain names, starting at T.
//
//	alias, _ := q.Joins(map[string]any{"orders": "line_items"}).AliasFor("orders", "line_items")
func (q *QueryBuilder[T]) AliasFor(names ...string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	if len(names) == 0 {
		return "", joindep.ErrEmptyChain
	}
	st, err := q.plan(context.Background())
	if err != nil {
		return "", err
	}
	q.build = st
	defer func() { q.build = nil }()

	s, err := q.scope()
	if err != nil {
		return "", err
	}
	a := s.Assoc(names[0])
	for _, name := range names[1:] {
		a = a.Assoc(name)
	}
	if s.Err() != nil {
		return "", s.Err()
	}
	alias, err := a.Alias()
	if err != nil {
		return "", err
	}
	return alias.Table.Ref(), nil
}

// plan partitions the join list and builds the join tree of one build.
func (q *QueryBuilder[T]) plan(ctx context.Context) (*buildState, error) {
	g, err := planJoins(q.partition, q.joins)
	if err != nil {
		return nil, err
	}
	tree, err := joindep.Build(q.session.registry, q.table, g)
	if err != nil {
		return nil, err
	}

	st := &buildState{id: uuid.New(), grouping: g, tree: tree}
	opts := []joindep.ResolverOption{
		joindep.WithBestEffortHook(func([]joindep.Reference, joindep.Alias) {
			st.bestEffort++
		}),
	}
	if q.session.obs.Logger != nil {
		opts = append(opts, joindep.WithLogger(q.session.obs.Logger,
			slog.String("build_id", st.id.String()),
			slog.String("table", q.table),
		))
	}
	st.resolver = joindep.NewResolver(tree, opts...)
	return st, nil
}

// compile renders the statement. selects overrides the projection;
// aggregate drops paging and ordering but keeps DISTINCT.
func (q *QueryBuilder[T]) compile(ctx context.Context, format sq.PlaceholderFormat, selects []clause.Expression, aggregate bool) (*compiled, error) {
	if q.err != nil {
		return nil, q.err
	}
	st, err := q.plan(ctx)
	if err != nil {
		return nil, err
	}
	q.build = st
	defer func() { q.build = nil }()

	sb := sq.Select().From(q.table).PlaceholderFormat(format)
	if q.distinct {
		sb = sb.Distinct()
	}

	if selects == nil {
		selects = q.selects
	}
	if len(selects) == 0 {
		sb = sb.Columns(q.defaultColumns(st)...)
	}
	for _, expr := range selects {
		sql, args, err := expr.Build()
		if err != nil {
			return nil, err
		}
		sb = sb.Column(sq.Expr(sql, args...))
	}

	joins := append(st.tree.Clauses(), joinNodes(st.grouping)...)
	for _, j := range joins {
		if j.Type == clause.FullJoin && !q.session.dialect.SupportsFullJoin() {
			return nil, fmt.Errorf("%w: %s", ErrFullJoinUnsupported, j.Table.Source())
		}
		sql, args, err := j.Build()
		if err != nil {
			return nil, err
		}
		sb = sb.JoinClause(sql, args...)
	}
	for _, spec := range st.grouping[joindep.StringJoin] {
		sql, args, err := spec.(clause.Expr).Build()
		if err != nil {
			return nil, err
		}
		sb = sb.JoinClause(sql, args...)
	}

	if len(q.wheres) > 0 {
		sql, args, err := conjunction(q.wheres).Build()
		if err != nil {
			return nil, err
		}
		sb = sb.Where(sql, args...)
	}

	for _, expr := range q.groups {
		sql, args, err := expr.Build()
		if err != nil {
			return nil, err
		}
		if len(args) > 0 {
			return nil, fmt.Errorf("squeal: GROUP BY term %q binds parameters", sql)
		}
		sb = sb.GroupBy(sql)
	}

	if len(q.havings) > 0 {
		sql, args, err := conjunction(q.havings).Build()
		if err != nil {
			return nil, err
		}
		sb = sb.Having(sql, args...)
	}

	if !aggregate {
		for _, o := range q.orders {
			sql, args, err := o.Build()
			if err != nil {
				return nil, err
			}
			sb = sb.OrderByClause(sql, args...)
		}
		if q.limit != nil {
			sb = sb.Limit(*q.limit)
		}
		if q.offset != nil {
			sb = sb.Offset(*q.offset)
		}
	}

	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	q.session.recordBestEffort(ctx, q.table, st.bestEffort)
	return &compiled{id: st.id, sql: sql, args: args, bestEffort: st.bestEffort}, nil
}

// defaultColumns qualifies the schema's columns with the base table once
// anything is joined.
func (q *QueryBuilder[T]) defaultColumns(st *buildState) []string {
	cols := q.schema.SelectColumns()
	if st.grouping.Len() == 0 {
		return cols
	}
	qualified := make([]string, len(cols))
	for i, col := range cols {
		qualified[i] = q.table + "." + col
	}
	return qualified
}

// conjunction combines conditions with AND. A single condition is used as
// is.
func conjunction(exprs []clause.Expression) clause.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.And(exprs)
}

// resolver returns the resolver of the build in progress.
func (q *QueryBuilder[T]) resolver() (dsl.AliasResolver, error) {
	if q.build == nil {
		return nil, dsl.ErrNoResolver
	}
	return q.build.resolver, nil
}

func (q *QueryBuilder[T]) scope() (*dsl.Scope, error) {
	return dsl.NewScope(q.session.registry, q.table, q.resolver)
}
