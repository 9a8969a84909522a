package values

import (
	"github.com/velmie/x/envconf/dburl"
)

// Option configures a value at declaration time.
type Option func(*options)

type options struct {
	def         any
	environ     bool
	environName string
	prefix      Prefix
	required    bool
	lateBinding bool

	helpText      string
	helpReference string
	example       ExampleGenerator

	caster          any
	validators      []any
	separator       string
	nestedSeparator string
	checkExists     bool
	alias           string
	database        dburl.Options
}

func newOptions(defaults []Option, opts []Option) *options {
	o := &options{
		environ:         true,
		separator:       ",",
		nestedSeparator: ";",
		checkExists:     true,
		alias:           DefaultAlias,
	}
	for _, opt := range defaults {
		opt(o)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Default sets the value used when the environment does not provide one.
// Passing another value copies its default.
func Default(v any) Option {
	return func(o *options) {
		if src, ok := v.(defaultProvider); ok {
			v = cloneDefault(src.defaultAny())
		}
		o.def = v
	}
}

// WithEnviron controls whether the environment is consulted at all.
func WithEnviron(enabled bool) Option {
	return func(o *options) {
		o.environ = enabled
	}
}

// WithEnvironName replaces the declared name when building the lookup key.
func WithEnvironName(name string) Option {
	return func(o *options) {
		o.environName = name
	}
}

// WithPrefix sets the value's own prefix. An empty prefix disables prefixing.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = PrefixOf(prefix)
	}
}

// Required makes a missing environment variable an error.
func Required() Option {
	return func(o *options) {
		o.required = true
	}
}

// WithLateBinding keeps the value unresolved in a namespace until it is first read.
func WithLateBinding(enabled bool) Option {
	return func(o *options) {
		o.lateBinding = enabled
	}
}

// WithHelpText adds a human readable description to error reports.
func WithHelpText(text string) Option {
	return func(o *options) {
		o.helpText = text
	}
}

// WithHelpReference adds a documentation link to error reports.
func WithHelpReference(ref string) Option {
	return func(o *options) {
		o.helpReference = ref
	}
}

// WithExample adds a generated example value to error reports.
func WithExample(gen ExampleGenerator) Option {
	return func(o *options) {
		o.example = gen
	}
}

// WithCaster sets the caster, either a function or a name registered in Casters.
func WithCaster(ref any) Option {
	return func(o *options) {
		o.caster = ref
	}
}

// WithValidator adds a validator, either a function or a name registered in Validators.
func WithValidator(ref any) Option {
	return func(o *options) {
		o.validators = append(o.validators, ref)
	}
}

// WithSeparator sets the item separator of sequence values.
func WithSeparator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// WithNestedSeparator sets the group separator of nested sequence values.
func WithNestedSeparator(sep string) Option {
	return func(o *options) {
		o.nestedSeparator = sep
	}
}

// WithCheckExists controls whether a path value must exist.
func WithCheckExists(enabled bool) Option {
	return func(o *options) {
		o.checkExists = enabled
	}
}

// WithAlias sets the key the parsed backend descriptor is nested under.
func WithAlias(alias string) Option {
	return func(o *options) {
		o.alias = alias
	}
}

// WithDatabaseOptions tunes the database URL parser.
func WithDatabaseOptions(opts dburl.Options) Option {
	return func(o *options) {
		o.database = opts
	}
}
