package transform

import (
	"sort"
	"sync"

	cdmsilver "github.com/cdmsilver/cdmsilver"
)

// ColumnTransform builds a column expression from a source column name.
type ColumnTransform func(col string) cdmsilver.Expr

// CompositeTransform builds a column expression from a primary source column
// and an ordered list of fallback source columns.
type CompositeTransform func(source string, fallbacks []string) cdmsilver.Expr

// Registry is an open, named set of column transforms. New entries are added
// by registering a function; the engine never has to change. Safe for
// concurrent use.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]ColumnTransform
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]ColumnTransform)}
}

// Register adds or replaces a named transform.
func (r *Registry) Register(name string, fn ColumnTransform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
}

// Lookup returns the named transform, if registered.
func (r *Registry) Lookup(name string) (ColumnTransform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}

// Names lists the registered transform names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompositeRegistry is the registry counterpart for composite transforms.
type CompositeRegistry struct {
	mu  sync.RWMutex
	fns map[string]CompositeTransform
}

// NewCompositeRegistry returns an empty composite registry.
func NewCompositeRegistry() *CompositeRegistry {
	return &CompositeRegistry{fns: make(map[string]CompositeTransform)}
}

// Register adds or replaces a named composite transform.
func (r *CompositeRegistry) Register(name string, fn CompositeTransform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
}

// Lookup returns the named composite transform, if registered.
func (r *CompositeRegistry) Lookup(name string) (CompositeTransform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}
