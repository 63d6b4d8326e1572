// Package joindep connects DSL-authored association joins to the join
// dependency tree the query builder plans its JOIN clauses from.
//
// A query's join list mixes host-native specs (association names, nested
// association maps, raw joins) with DSL join nodes. Classify partitions that
// list so DSL nodes land with the association joins, Build turns the
// association joins into an aliased Tree, and a Resolver maps a chain of DSL
// association references back to the alias the Tree assigned to it.
package joindep

import (
	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/clause"
)

// Spec is one element of a join list. Host-native specs are string,
// []string, map[string]any, []any, clause.Join and clause.Expr values;
// DSL-authored specs implement DSLJoin.
type Spec = any

// DSLJoin is implemented by join nodes built with the expression DSL.
type DSLJoin interface {
	// JoinPath returns the declared reflections from the query's base
	// model down to the joined association.
	JoinPath() []*assoc.Reflection
	// JoinType is applied to the last hop of the path.
	JoinType() clause.JoinType
}

// Bucket names one partition of a join list.
type Bucket string

const (
	AssociationJoin Bucket = "association_join"
	JoinNode        Bucket = "join_node"
	StringJoin      Bucket = "string_join"
	Unknown         Bucket = "unknown_join"
)

// Rule assigns a bucket to a single spec.
type Rule func(Spec) Bucket

// Grouping is a join list partitioned by bucket. Each bucket keeps the
// relative order the specs had in the input.
type Grouping map[Bucket][]Spec

// Len returns the total number of specs across all buckets.
func (g Grouping) Len() int {
	n := 0
	for _, specs := range g {
		n += len(specs)
	}
	return n
}

// Partitioner is the join-list partitioning step of the build pipeline.
type Partitioner func(specs []Spec, rule Rule) Grouping

// GroupBy partitions specs with rule alone. This is the plain partitioning
// pass; DSL join nodes are handed to rule like anything else.
func GroupBy(specs []Spec, rule Rule) Grouping {
	g := make(Grouping)
	for _, spec := range specs {
		key := rule(spec)
		g[key] = append(g[key], spec)
	}
	return g
}

// Classify partitions specs like GroupBy, except that DSL join nodes always
// go to AssociationJoin and rule is never called for them.
func Classify(specs []Spec, rule Rule) Grouping {
	return GroupBy(specs, func(spec Spec) Bucket {
		if _, ok := spec.(DSLJoin); ok {
			return AssociationJoin
		}
		return rule(spec)
	})
}

var (
	_ Partitioner = GroupBy
	_ Partitioner = Classify
)
