package settings

import (
	"fmt"
	"sort"
	"sync"

	"github.com/velmie/x/envconf/envx"
)

// DefaultSelectorVariable names the environment variable that selects a configuration.
const DefaultSelectorVariable = "DJANGO_CONFIGURATION"

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSelectorVariable replaces DJANGO_CONFIGURATION as the selector.
func WithSelectorVariable(name string) RegistryOption {
	return func(r *Registry) {
		r.variable = name
	}
}

// WithSelectorSource sets the resolver the selector is read from.
func WithSelectorSource(resolver envx.Resolver) RegistryOption {
	return func(r *Registry) {
		r.resolver = resolver
	}
}

// Registry holds named configurations and picks one from the environment.
type Registry struct {
	mu       sync.RWMutex
	variable string
	resolver envx.Resolver
	configs  map[string]*Configuration
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		variable: DefaultSelectorVariable,
		resolver: envx.DefaultResolver,
		configs:  make(map[string]*Configuration),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds configurations. Names must be unique.
func (r *Registry) Register(configs ...*Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cfg := range configs {
		if _, ok := r.configs[cfg.Name()]; ok {
			return fmt.Errorf("%w: configuration %q", ErrDuplicateName, cfg.Name())
		}
		r.configs[cfg.Name()] = cfg
	}
	return nil
}

// Names returns the registered configuration names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the configuration called name.
func (r *Registry) Get(name string) (*Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[name]
	if !ok {
		return nil, &SelectError{Code: ErrConfigurationNotFound, Message: fmt.Sprintf("Couldn't find configuration '%s'", name)}
	}
	return cfg, nil
}

// Select returns the configuration named by the selector variable.
func (r *Registry) Select() (*Configuration, error) {
	v, err := r.resolver.Get(r.variable)
	if err != nil {
		return nil, err
	}
	if !v.Exist || v.Val == "" {
		return nil, &SelectError{
			Code:    ErrConfigurationUndefined,
			Message: fmt.Sprintf("Configuration cannot be imported, environment variable %s is undefined.", r.variable),
		}
	}
	return r.Get(v.Val)
}

// Setup selects a configuration and sets it up.
func (r *Registry) Setup() (*Namespace, error) {
	cfg, err := r.Select()
	if err != nil {
		return nil, err
	}
	return cfg.Setup()
}
