package values

import (
	"fmt"
	"strings"
)

// sequence holds the splitting rules shared by list, tuple and set values.
type sequence[T any] struct {
	noun      string
	separator string
	item      Caster[T]
}

func newSequence[T any](noun string, o *options, item Caster[T]) (sequence[T], error) {
	if item == nil {
		identity, err := identityCaster[T]()
		if err != nil {
			return sequence[T]{}, err
		}
		item = identity
	}
	return sequence[T]{noun: noun, separator: o.separator, item: item}, nil
}

// split breaks raw on the separator, trims every token and drops empty ones.
func (s sequence[T]) split(raw string) []string {
	parts := strings.Split(strings.TrimSpace(raw), s.separator)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// convert casts every token of raw. A failing token fails the whole conversion.
func (s sequence[T]) convert(raw string) ([]T, error) {
	return s.convertTokens(s.split(raw), raw)
}

func (s sequence[T]) convertTokens(tokens []string, raw string) ([]T, error) {
	out := make([]T, 0, len(tokens))
	for _, token := range tokens {
		v, err := s.item(token)
		if err != nil {
			return nil, fmt.Errorf("Cannot interpret %s item %q in %s %q", s.noun, token, s.noun, raw)
		}
		out = append(out, v)
	}
	return out, nil
}

// defaults converts a literal default. Accepted forms are []T, []string
// and a raw string that is split like an environment value.
func (s sequence[T]) defaults(def any) ([]T, error) {
	switch d := def.(type) {
	case nil:
		return []T{}, nil
	case []T:
		return append([]T{}, d...), nil
	case []string:
		return s.convertTokens(d, strings.Join(d, s.separator))
	case string:
		return s.convert(d)
	default:
		var zero T
		return nil, fmt.Errorf("%w %#v: expected []%T", ErrInvalidDefault, def, zero)
	}
}

func identityCaster[T any]() (Caster[T], error) {
	var zero T
	if _, ok := any(zero).(string); !ok {
		return nil, fmt.Errorf("%w: %T items need a converter", ErrCannotUseCaster, zero)
	}
	return func(raw string) (T, error) {
		return any(raw).(T), nil
	}, nil
}

// ListOf declares a list whose items are converted by item.
// A nil item keeps tokens as strings, which requires T to be string.
func ListOf[T any](item Caster[T], opts ...Option) (*Value[[]T], error) {
	return sliceValue("ListValue", "list", item, opts)
}

// List declares a list of strings.
func List(opts ...Option) (*Value[[]string], error) {
	return ListOf[string](nil, opts...)
}

// TupleOf declares a tuple whose items are converted by item.
// It behaves like ListOf and differs only in how it is reported.
func TupleOf[T any](item Caster[T], opts ...Option) (*Value[[]T], error) {
	return sliceValue("TupleValue", "tuple", item, opts)
}

// Tuple declares a tuple of strings.
func Tuple(opts ...Option) (*Value[[]string], error) {
	return TupleOf[string](nil, opts...)
}

func sliceValue[T any](kind, noun string, item Caster[T], opts []Option) (*Value[[]T], error) {
	o := newOptions(nil, opts)
	seq, err := newSequence(noun, o, item)
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Cause: err}
	}
	def, err := seq.defaults(o.def)
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Cause: err}
	}
	return newValue(kind, o, seq.convert, def)
}

// SetOf declares a deduplicated set whose items are converted by item.
func SetOf[T comparable](item Caster[T], opts ...Option) (*Value[map[T]struct{}], error) {
	const kind = "SetValue"
	o := newOptions(nil, opts)
	seq, err := newSequence("set", o, item)
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Cause: err}
	}

	var def map[T]struct{}
	if typed, ok := o.def.(map[T]struct{}); ok {
		def = make(map[T]struct{}, len(typed))
		for k := range typed {
			def[k] = struct{}{}
		}
	} else {
		items, err := seq.defaults(o.def)
		if err != nil {
			return nil, &ConfigurationError{Kind: kind, Cause: err}
		}
		def = toSet(items)
	}

	cast := func(raw string) (map[T]struct{}, error) {
		items, err := seq.convert(raw)
		if err != nil {
			return nil, err
		}
		return toSet(items), nil
	}
	return newValue(kind, o, cast, def)
}

// Set declares a set of strings.
func Set(opts ...Option) (*Value[map[string]struct{}], error) {
	return SetOf[string](nil, opts...)
}

func toSet[T comparable](items []T) map[T]struct{} {
	set := make(map[T]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// SingleNestedListOf declares a list of lists. Groups are separated by the nested
// separator (";" unless WithNestedSeparator is given) and items by the separator.
func SingleNestedListOf[T any](item Caster[T], opts ...Option) (*Value[[][]T], error) {
	return nestedValue("SingleNestedListValue", "list", item, opts)
}

// SingleNestedList declares a list of string lists.
func SingleNestedList(opts ...Option) (*Value[[][]string], error) {
	return SingleNestedListOf[string](nil, opts...)
}

// SingleNestedTupleOf declares a tuple of tuples.
func SingleNestedTupleOf[T any](item Caster[T], opts ...Option) (*Value[[][]T], error) {
	return nestedValue("SingleNestedTupleValue", "tuple", item, opts)
}

// SingleNestedTuple declares a tuple of string tuples.
func SingleNestedTuple(opts ...Option) (*Value[[][]string], error) {
	return SingleNestedTupleOf[string](nil, opts...)
}

func nestedValue[T any](kind, noun string, item Caster[T], opts []Option) (*Value[[][]T], error) {
	o := newOptions(nil, opts)
	seq, err := newSequence(noun, o, item)
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Cause: err}
	}

	cast := func(raw string) ([][]T, error) {
		groups := make([][]T, 0)
		for _, group := range strings.Split(raw, o.nestedSeparator) {
			if strings.TrimSpace(group) == "" {
				continue
			}
			items, err := seq.convertTokens(seq.split(group), raw)
			if err != nil {
				return nil, err
			}
			groups = append(groups, items)
		}
		return groups, nil
	}

	def, err := nestedDefaults(seq, o.def, cast)
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Cause: err}
	}
	return newValue(kind, o, cast, def)
}

// nestedDefaults accepts nested or flat literal defaults. A flat default becomes one group.
func nestedDefaults[T any](seq sequence[T], def any, cast Caster[[][]T]) ([][]T, error) {
	switch d := def.(type) {
	case nil:
		return [][]T{}, nil
	case string:
		return cast(d)
	case [][]T:
		out := make([][]T, 0, len(d))
		for _, group := range d {
			out = append(out, append([]T{}, group...))
		}
		return out, nil
	case [][]string:
		out := make([][]T, 0, len(d))
		for _, group := range d {
			items, err := seq.convertTokens(group, strings.Join(group, seq.separator))
			if err != nil {
				return nil, err
			}
			out = append(out, items)
		}
		return out, nil
	default:
		flat, err := seq.defaults(def)
		if err != nil {
			return nil, err
		}
		if len(flat) == 0 {
			return [][]T{}, nil
		}
		return [][]T{flat}, nil
	}
}
