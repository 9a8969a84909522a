// Package values declares typed settings that are resolved from environment variables.
//
// A Value bundles a default, the rules to find its environment variable and a caster
// that turns the raw string into a typed result:
//
//	debug := values.Must(values.Boolean(values.Default(false)))
//	on, err := debug.Setup("DEBUG") // reads DJANGO_DEBUG
//
// Composite values such as DatabaseURL resolve to a map whose entries are published
// as separate settings by the settings package.
package values

import (
	"fmt"
	"reflect"
	"sync"
)

// Caster converts a raw environment string into a typed value.
type Caster[T any] func(raw string) (T, error)

// Validator checks a raw environment string.
type Validator func(raw string) error

// Field is the type-erased view of a value used by configuration registries.
type Field interface {
	// Kind names the value type in error reports, e.g. "BooleanValue"
	Kind() string
	// Multiple reports whether the resolved value expands into sibling settings
	Multiple() bool
	// LateBinding reports whether resolution is deferred until first use
	LateBinding() bool
	// Resolve returns the resolved value and, for multiple values, the sibling settings
	Resolve(scope Scope, name string) (any, map[string]any, error)
}

type defaultProvider interface {
	defaultAny() any
}

// Value is a single declared setting of type T.
type Value[T any] struct {
	kind        string
	def         T
	environ     bool
	environName string
	prefix      Prefix
	required    bool
	multiple    bool
	lateBinding bool

	helpText      string
	helpReference string
	example       ExampleGenerator

	cast   Caster[T]
	finish func(name string, v T) (T, error)
	expand func(name string, v T) map[string]any

	mu       sync.Mutex
	resolved *resolution[T]
}

type resolution[T any] struct {
	name  string
	value T
}

func newValue[T any](kind string, o *options, cast Caster[T], def T) (*Value[T], error) {
	if o.required && !o.environ {
		return nil, &ConfigurationError{Kind: kind, Cause: ErrRequiredWithoutEnviron}
	}
	if cast == nil {
		return nil, configError(kind, "%w: no caster given", ErrCannotUseCaster)
	}
	return &Value[T]{
		kind:          kind,
		def:           def,
		environ:       o.environ,
		environName:   o.environName,
		prefix:        o.prefix,
		required:      o.required,
		lateBinding:   o.lateBinding,
		helpText:      o.helpText,
		helpReference: o.helpReference,
		example:       o.example,
		cast:          cast,
	}, nil
}

// New declares a value with a caster given through WithCaster.
// Without a caster the raw string is used as is, which requires T to be string.
func New[T any](opts ...Option) (*Value[T], error) {
	const kind = "Value"
	o := newOptions(nil, opts)

	var cast Caster[T]
	if o.caster != nil {
		c, err := resolveCaster[T](o.caster)
		if err != nil {
			return nil, &ConfigurationError{Kind: kind, Cause: err}
		}
		cast = c
	} else {
		var zero T
		if _, ok := any(zero).(string); !ok {
			return nil, configError(kind, "%w: %T values need a caster", ErrCannotUseCaster, zero)
		}
		cast = func(raw string) (T, error) {
			return any(raw).(T), nil
		}
	}

	cast, err := withValidators(kind, o, cast)
	if err != nil {
		return nil, err
	}

	def, err := defaultOf[T](kind, o.def, cast)
	if err != nil {
		return nil, err
	}
	if err = validateDefault(kind, o, cast); err != nil {
		return nil, err
	}
	return newValue(kind, o, cast, def)
}

// Must panics if err is not nil. It is meant for package level declarations.
func Must[T any](v *Value[T], err error) *Value[T] {
	if err != nil {
		panic(err)
	}
	return v
}

// Kind names the value type in error reports.
func (v *Value[T]) Kind() string {
	return v.kind
}

// Multiple reports whether the resolved value expands into sibling settings.
func (v *Value[T]) Multiple() bool {
	return v.multiple
}

// LateBinding reports whether resolution is deferred until first use.
func (v *Value[T]) LateBinding() bool {
	return v.lateBinding
}

// Environ reports whether the environment is consulted.
func (v *Value[T]) Environ() bool {
	return v.environ
}

// IsRequired reports whether a missing environment variable is an error.
func (v *Value[T]) IsRequired() bool {
	return v.required
}

// DefaultValue returns the declared default.
func (v *Value[T]) DefaultValue() T {
	return v.def
}

func (v *Value[T]) defaultAny() any {
	return v.def
}

// EnvKey returns the environment variable name used for the declared name in scope.
func (v *Value[T]) EnvKey(scope Scope, name string) string {
	return LookupKey(name, v.environName, v.prefix, scope.Prefix)
}

// ToGo converts a raw string the way a present environment variable would be converted.
func (v *Value[T]) ToGo(raw string) (T, error) {
	val, err := v.cast(raw)
	if err != nil {
		return val, err
	}
	if v.finish != nil {
		return v.finish("", val)
	}
	return val, nil
}

// Setup resolves the value for the declared name from envx.DefaultResolver.
func (v *Value[T]) Setup(name string) (T, error) {
	return v.SetupIn(Scope{}, name)
}

// SetupIn resolves the value for the declared name within scope.
// A successful result is cached: calling again with the same name returns it
// without consulting the environment.
func (v *Value[T]) SetupIn(scope Scope, name string) (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.resolved != nil && v.resolved.name == name {
		return v.resolved.value, nil
	}

	val, err := v.resolve(scope, name)
	if err != nil {
		var zero T
		return zero, err
	}
	v.resolved = &resolution[T]{name: name, value: val}
	return val, nil
}

// Reset drops the cached resolution.
func (v *Value[T]) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resolved = nil
}

// Resolve implements Field.
func (v *Value[T]) Resolve(scope Scope, name string) (any, map[string]any, error) {
	val, err := v.SetupIn(scope, name)
	if err != nil {
		return nil, nil, err
	}
	if !v.multiple || v.expand == nil {
		return val, nil, nil
	}
	return val, v.expand(name, val), nil
}

func (v *Value[T]) resolve(scope Scope, name string) (T, error) {
	key := v.EnvKey(scope, name)
	value := v.def
	raw := fmt.Sprint(v.def)

	if v.environ {
		variable, err := scope.resolver().Get(key)
		if err != nil {
			var zero T
			return zero, fmt.Errorf("%s: %w", name, err)
		}
		switch {
		case variable.Exist:
			raw = variable.Val
			value, err = v.cast(raw)
			if err != nil {
				return value, v.processingError(name, key, raw, err)
			}
		case v.required:
			return value, &ValueRetrievalError{ValueInfo: v.info(name, key)}
		}
	}

	if v.finish != nil {
		finished, err := v.finish(name, value)
		if err != nil {
			return finished, v.processingError(name, key, raw, err)
		}
		value = finished
	}
	return value, nil
}

func (v *Value[T]) info(name, key string) ValueInfo {
	info := ValueInfo{
		Name:          name,
		EnvKey:        key,
		Kind:          v.kind,
		Environ:       v.environ,
		HelpText:      v.helpText,
		HelpReference: v.helpReference,
	}
	if v.example != nil {
		info.Example = v.example()
	}
	return info
}

func (v *Value[T]) processingError(name, key, raw string, cause error) error {
	return &ValueProcessingError{ValueInfo: v.info(name, key), Raw: raw, Cause: cause}
}

// defaultOf converts a declared default into T. Strings are passed to fromRaw
// when T is not a string itself.
func defaultOf[T any](kind string, def any, fromRaw Caster[T]) (T, error) {
	var zero T
	if def == nil {
		return zero, nil
	}
	if typed, ok := def.(T); ok {
		return typed, nil
	}
	if raw, ok := def.(string); ok && fromRaw != nil {
		val, err := fromRaw(raw)
		if err != nil {
			return zero, configError(kind, "%w %q: %w", ErrInvalidDefault, raw, err)
		}
		return val, nil
	}
	return zero, configError(kind, "%w %#v: expected %T", ErrInvalidDefault, def, zero)
}

// validateDefault runs a non-empty string default through cast when validators are attached.
func validateDefault[T any](kind string, o *options, cast Caster[T]) error {
	raw, ok := o.def.(string)
	if !ok || raw == "" || len(o.validators) == 0 {
		return nil
	}
	if _, err := cast(raw); err != nil {
		return configError(kind, "%w %q: %w", ErrInvalidDefault, raw, err)
	}
	return nil
}

// casterOf returns the caster set with WithCaster, or fallback when there is none.
func casterOf[T any](kind string, o *options, fallback Caster[T]) (Caster[T], error) {
	if o.caster == nil {
		return fallback, nil
	}
	cast, err := resolveCaster[T](o.caster)
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Cause: err}
	}
	return cast, nil
}

func withValidators[T any](kind string, o *options, cast Caster[T]) (Caster[T], error) {
	if len(o.validators) == 0 {
		return cast, nil
	}
	validators := make([]Validator, 0, len(o.validators))
	for _, ref := range o.validators {
		fn, err := resolveValidator(ref)
		if err != nil {
			return nil, &ConfigurationError{Kind: kind, Cause: err}
		}
		validators = append(validators, fn)
	}
	return func(raw string) (T, error) {
		for _, validate := range validators {
			if err := validate(raw); err != nil {
				var zero T
				return zero, err
			}
		}
		return cast(raw)
	}, nil
}

// cloneDefault copies slices and maps so that values sharing a default stay independent.
func cloneDefault(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	default:
		return v
	}
}
