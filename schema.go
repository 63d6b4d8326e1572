package squeal

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/arllen133/squeal/assoc"
)

// Schema maps a model to its table.
type Schema[T any] interface {
	TableName() string

	// SelectColumns lists the columns Find selects by default.
	SelectColumns() []string
}

// Associator is implemented by schemas that declare associations.
type Associator interface {
	Associations(m *assoc.Model)
}

var (
	schemasMu       sync.RWMutex
	schemas         = make(map[reflect.Type]any)
	defaultRegistry = assoc.NewRegistry()
)

// RegisterSchema records schema for T and declares its associations in the
// default registry.
//
//	squeal.RegisterSchema[User](UserSchema{})
func RegisterSchema[T any](schema Schema[T]) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	schemasMu.Lock()
	schemas[typ] = schema
	schemasMu.Unlock()

	defaultRegistry.Define(schema.TableName(), func(m *assoc.Model) {
		if a, ok := schema.(Associator); ok {
			a.Associations(m)
		}
	})
}

// DefineTable declares associations for a table that has no Go model, such
// as a join table reached only through associations.
func DefineTable(table string, fn func(m *assoc.Model)) *assoc.Model {
	return defaultRegistry.Define(table, fn)
}

func LoadSchema[T any]() Schema[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	schemasMu.RLock()
	s, ok := schemas[typ]
	schemasMu.RUnlock()
	if ok {
		return s.(Schema[T])
	}
	panic(fmt.Sprintf("squeal: schema not registered for type %v", typ))
}
