package envx

import "sync"

// Variable is the outcome of a lookup.
type Variable struct {
	// Name is the primary name, the first one for Coalesce
	Name string
	// Val holds the raw value when Exist is true
	Val string
	// Exist reports whether any source had the variable
	Exist bool
	// Source is the name of the source the value came from
	Source string
	// AllNames keeps every name that was tried, in order
	AllNames []string
}

// Resolver defines methods that any resolver must implement.
type Resolver interface {
	// Get looks up a variable by name.
	Get(name string) (*Variable, error)

	// Coalesce tries a list of variable names and returns the first one found.
	Coalesce(names ...string) (*Variable, error)

	// AddSource adds a new source to the resolver.
	AddSource(src Source)
}

// ErrorHandler defines how errors from sources should be handled
type ErrorHandler func(err error, sourceName string) (bool, error)

// ContinueOnError is an error handler that ignores errors and continues to next source
func ContinueOnError(err error, sourceName string) (bool, error) {
	return true, nil
}

// BreakOnError is an error handler that stops resolution on first error
func BreakOnError(err error, sourceName string) (bool, error) {
	return false, err
}

// StandardResolver implements Resolver interface and manages multiple sources,
// looking up values from them sequentially.
type StandardResolver struct {
	mu           sync.RWMutex
	sources      []Source
	errorHandler ErrorHandler
}

// NewResolver creates a new StandardResolver with the given sources.
// Sources will be queried in the order they are provided.
// By default, uses BreakOnError as the error handler.
func NewResolver(sources ...Source) *StandardResolver {
	return &StandardResolver{
		sources:      sources,
		errorHandler: BreakOnError,
	}
}

// WithErrorHandler sets a custom error handler and returns the resolver for chaining.
func (r *StandardResolver) WithErrorHandler(handler ErrorHandler) *StandardResolver {
	r.errorHandler = handler
	return r
}

// AddSource adds a new source to the resolver.
// The new source is added to the end of the source list (lowest priority).
func (r *StandardResolver) AddSource(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, src)
}

// PrependSource adds a source in front of all others (highest priority).
func (r *StandardResolver) PrependSource(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append([]Source{src}, r.sources...)
}

// Sources returns a copy of the source list in lookup order.
func (r *StandardResolver) Sources() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Source(nil), r.sources...)
}

// Get looks up a variable by name from all registered sources.
// Returns the first value found or a non-existing Variable if not found in any source.
// Returns error if a source returns an error and the error handler decides to break.
func (r *StandardResolver) Get(name string) (*Variable, error) {
	val, srcName, exist, err := r.lookup(name, false)
	if err != nil {
		return nil, err
	}

	return &Variable{
		Name:     name,
		Val:      val,
		Exist:    exist,
		Source:   srcName,
		AllNames: []string{name},
	}, nil
}

// Coalesce tries a list of variable names and returns the first one found with a non-empty value.
// It tries each name in all sources before moving to the next name.
// Returns error if a source returns an error and the error handler decides to break.
func (r *StandardResolver) Coalesce(names ...string) (*Variable, error) {
	if len(names) == 0 {
		return &Variable{}, nil
	}

	allNames := make([]string, len(names))
	copy(allNames, names)

	for _, name := range names {
		val, srcName, exist, err := r.lookup(name, true)
		if err != nil {
			return nil, err
		}
		if exist {
			return &Variable{
				Name:     names[0], // primary name is used in error messages
				Val:      val,
				Exist:    true,
				Source:   srcName,
				AllNames: allNames,
			}, nil
		}
	}

	return &Variable{
		Name:     names[0],
		Exist:    false,
		AllNames: allNames,
	}, nil
}

func (r *StandardResolver) lookup(name string, nonEmpty bool) (string, string, bool, error) {
	for _, src := range r.Sources() {
		val, exist, err := src.Lookup(name)
		if err != nil {
			err = &LookupError{VarName: name, Source: src.Name(), Cause: err}
			if r.errorHandler == nil {
				return "", "", false, err
			}

			continueResolution, handlerErr := r.errorHandler(err, src.Name())
			if !continueResolution {
				return "", "", false, handlerErr
			}
			continue
		}
		if exist && (!nonEmpty || val != "") {
			return val, src.Name(), true, nil
		}
	}

	return "", "", false, nil
}
