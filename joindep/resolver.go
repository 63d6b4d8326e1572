package joindep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arllen133/squeal/assoc"
	"github.com/arllen133/squeal/clause"
)

var (
	// ErrAssociationNotJoined means a chain names an association that is not
	// part of the query's join tree. Building must stop: any alias picked in
	// its place would point columns at the wrong table.
	ErrAssociationNotJoined = errors.New("joindep: association not joined")
	ErrEmptyChain           = errors.New("joindep: empty association chain")
)

// Reference is one hop of an association chain.
type Reference interface {
	Reflection() *assoc.Reflection
}

// Alias is the table a chain resolved to.
//
// BestEffort is set when the matched node carried no table handle and the
// alias was derived from the association's target table instead. That table
// is wrong whenever the same target is joined more than once along different
// paths in the query.
type Alias struct {
	Table      clause.Table
	BestEffort bool
}

// Resolver finds the alias a join tree assigned to an association chain.
// A Resolver is bound to the tree of one query build and never modifies it.
type Resolver struct {
	tree         *Tree
	logger       *slog.Logger
	attrs        []slog.Attr
	onBestEffort func(chain []Reference, alias Alias)
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithLogger makes the resolver warn about best-effort aliases.
func WithLogger(logger *slog.Logger, attrs ...slog.Attr) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
		r.attrs = attrs
	}
}

// WithBestEffortHook registers fn to run whenever a best-effort alias is returned.
func WithBestEffortHook(fn func(chain []Reference, alias Alias)) ResolverOption {
	return func(r *Resolver) {
		r.onBestEffort = fn
	}
}

func NewResolver(tree *Tree, opts ...ResolverOption) *Resolver {
	r := &Resolver{tree: tree}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAlias walks the tree from its root, following at each step the
// child whose reflection matches the next reference in chain, and returns
// the table of the last node matched.
func (r *Resolver) ResolveAlias(chain []Reference) (Alias, error) {
	node, err := r.find(chain)
	if err != nil {
		return Alias{}, err
	}
	if node.Table != nil {
		return Alias{Table: *node.Table}, nil
	}

	alias := Alias{Table: clause.Table{Name: node.Reflection.Target}, BestEffort: true}
	if r.logger != nil {
		attrs := append([]slog.Attr{
			slog.String("association", chainString(chain)),
			slog.String("table", alias.Table.Name),
		}, r.attrs...)
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "best-effort table alias", attrs...)
	}
	if r.onBestEffort != nil {
		r.onBestEffort(chain, alias)
	}
	return alias, nil
}

func (r *Resolver) find(chain []Reference) (*Node, error) {
	if len(chain) == 0 {
		return nil, ErrEmptyChain
	}
	if r.tree == nil || r.tree.Root == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssociationNotJoined, chainString(chain))
	}

	current := r.tree.Root
	for i, ref := range chain {
		want := EffectiveReflection(ref.Reflection())
		var next *Node
		for _, c := range current.Children {
			if c.Reflection != nil && EffectiveReflection(c.Reflection) == want {
				next = c
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrAssociationNotJoined, chainString(chain[:i+1]))
		}
		current = next
	}
	return current, nil
}

// EffectiveReflection returns the reflection two reflections are compared
// by: the end of ref's parent chain, or ref itself when it has no parent.
func EffectiveReflection(ref *assoc.Reflection) *assoc.Reflection {
	if ref == nil {
		return nil
	}
	for ref.ParentReflection() != nil {
		ref = ref.ParentReflection()
	}
	return ref
}

func chainString(chain []Reference) string {
	names := make([]string, 0, len(chain))
	for _, ref := range chain {
		if rf := ref.Reflection(); rf != nil {
			names = append(names, rf.String())
		} else {
			names = append(names, "<nil>")
		}
	}
	return strings.Join(names, " -> ")
}
