package joindep

import (
	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/clause"
)

// Node is one joined association in a Tree. The root node stands for the
// query's base table and has no Reflection.
type Node struct {
	Reflection *assoc.Reflection
	// Table is the aliased table the association's columns live in. Trees
	// produced by Build always set it.
	Table    *clause.Table
	Type     clause.JoinType
	Children []*Node

	steps []clause.Join
}

// Child returns the direct child joined through ref, comparing reflections
// by identity.
func (n *Node) Child(ref *assoc.Reflection) *Node {
	for _, c := range n.Children {
		if c.Reflection == ref {
			return c
		}
	}
	return nil
}

// Tree is the join dependency of one query build.
type Tree struct {
	Root *Node
}

// Clauses returns the JOIN clauses for every node, parents before children
// and siblings in join-list order.
func (t *Tree) Clauses() []clause.Join {
	var joins []clause.Join
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			joins = append(joins, c.steps...)
			walk(c)
		}
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return joins
}

// Walk calls fn for every non-root node in Clauses order.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		for _, c := range n.Children {
			fn(c, depth)
			walk(c, depth+1)
		}
	}
	if t.Root != nil {
		walk(t.Root, 1)
	}
}
