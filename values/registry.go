package values

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps reference names to casters, validators or backends.
// It stands in for importing objects by dotted path.
type Registry[T any] struct {
	mu    sync.RWMutex
	what  string
	items map[string]T
}

// NewRegistry creates an empty registry. what names the registered objects in errors.
func NewRegistry[T any](what string) *Registry[T] {
	return &Registry[T]{
		what:  what,
		items: make(map[string]T),
	}
}

// Register binds name to item, replacing an existing binding.
func (r *Registry[T]) Register(name string, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[name] = item
}

// Lookup returns the item registered under name or an ErrCannotImport error.
func (r *Registry[T]) Lookup(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w %q: no such %s", ErrCannotImport, name, r.what)
	}
	return item, nil
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for n := range r.items {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var (
	// Casters holds named casters. Entries must be Caster[T] or func(string) (T, error).
	Casters = NewRegistry[any]("caster")
	// Validators holds named validators.
	Validators = NewRegistry[Validator]("validator")
	// KnownBackends holds backend names that a Backends value accepts.
	KnownBackends = NewRegistry[any]("backend")
)

func resolveCaster[T any](ref any) (Caster[T], error) {
	if name, ok := ref.(string); ok {
		item, err := Casters.Lookup(name)
		if err != nil {
			return nil, err
		}
		ref = item
	}
	switch c := ref.(type) {
	case Caster[T]:
		return c, nil
	case func(string) (T, error):
		return c, nil
	default:
		var zero T
		return nil, fmt.Errorf("%w %v: expected a caster producing %T", ErrCannotUseCaster, ref, zero)
	}
}

func resolveValidator(ref any) (Validator, error) {
	if name, ok := ref.(string); ok {
		return Validators.Lookup(name)
	}
	switch v := ref.(type) {
	case Validator:
		return v, nil
	case func(string) error:
		return v, nil
	default:
		return nil, fmt.Errorf("%w %v", ErrCannotUseValidator, ref)
	}
}
