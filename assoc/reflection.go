// Package assoc holds association metadata: which tables relate to which,
// through which keys. A Reflection describes one association hop and is
// what join trees and DSL association references are matched on.
package assoc

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownModel       = errors.New("assoc: unknown model")
	ErrUnknownAssociation = errors.New("assoc: unknown association")
)

// Kind is the association macro.
type Kind int

const (
	// BelongsTo: the source row holds the foreign key.
	BelongsTo Kind = iota
	// HasOne: the target row holds the foreign key, at most one match.
	HasOne
	// HasMany: the target row holds the foreign key.
	HasMany
	// ManyToMany: rows are linked through a join table.
	ManyToMany
	// HasManyThrough composes two declared associations.
	HasManyThrough
)

func (k Kind) String() string {
	switch k {
	case BelongsTo:
		return "belongs_to"
	case HasOne:
		return "has_one"
	case HasMany:
		return "has_many"
	case ManyToMany:
		return "many_to_many"
	case HasManyThrough:
		return "has_many_through"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Reflection describes one association hop from Source to Target.
//
// Key columns by kind:
//   - BelongsTo: Source.ForeignKey references Target.PrimaryKey
//   - HasOne/HasMany: Target.ForeignKey references Source.PrimaryKey
//   - ManyToMany: JoinTable.ForeignKey references Source.PrimaryKey and
//     JoinTable.AssociationForeignKey references Target.PrimaryKey
//   - HasManyThrough: Through is the first hop (declared on Source) and
//     SourceReflection the second (declared on Through.Target)
type Reflection struct {
	Name   string
	Kind   Kind
	Source string
	Target string

	ForeignKey string
	PrimaryKey string

	JoinTable             string
	AssociationForeignKey string

	Through          *Reflection
	SourceReflection *Reflection

	parent *Reflection
}

// ParentReflection returns the reflection this one was derived from, or nil.
// Join reflections generated for many-to-many declarations point at the
// declared reflection.
func (r *Reflection) ParentReflection() *Reflection {
	return r.parent
}

// String returns "source.name".
func (r *Reflection) String() string {
	return r.Source + "." + r.Name
}

// Derive returns a copy of r whose parent is r.
func (r *Reflection) Derive() *Reflection {
	d := *r
	d.parent = r
	return &d
}
