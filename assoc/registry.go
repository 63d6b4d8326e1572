package assoc

import (
	"fmt"
	"sync"
)

// Registry maps table names to models. Models are defined once at startup;
// lookups are safe from concurrent query builds.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Define returns the model for table, creating it on first use, and applies
// fn to it while holding the registry lock.
func (r *Registry) Define(table string, fn func(m *Model)) *Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[table]
	if !ok {
		m = NewModel(table)
		r.models[table] = m
	}
	if fn != nil {
		fn(m)
	}
	return m
}

// Lookup returns the model registered for table.
func (r *Registry) Lookup(table string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[table]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, table)
}

// Target returns the model an association points at.
func (r *Registry) Target(ref *Reflection) (*Model, error) {
	return r.Lookup(ref.Target)
}

// MustLookup is like Lookup but panics when table is not registered.
func (r *Registry) MustLookup(table string) *Model {
	m, err := r.Lookup(table)
	if err != nil {
		panic(err)
	}
	return m
}
