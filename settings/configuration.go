// Package settings declares configurations: named sets of values that are resolved
// together and published into a Namespace.
//
//	cfg := settings.New("Prod", settings.WithDotenv(settings.DotenvOptions{Path: ".env"}))
//	cfg.MustAdd("DEBUG", values.Must(values.Boolean()))
//	cfg.MustAdd("DATABASES", values.Must(values.DatabaseURL()))
//	ns, err := cfg.Setup()
package settings

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/velmie/x/envconf/envx"
	"github.com/velmie/x/envconf/values"
)

// DotenvLoadedSetting is published with the dotenv path when a dotenv file was loaded.
const DotenvLoadedSetting = "DOTENV_LOADED"

var settingName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// PreSetupHook runs before anything is resolved.
type PreSetupHook func(cfg *Configuration) error

// PostSetupHook runs once every eager value is published.
type PostSetupHook func(ns *Namespace) error

// ComputeFunc derives a setting from already published ones.
type ComputeFunc func(ns *Namespace) (any, error)

// DotenvOptions describes the dotenv file a configuration reads.
type DotenvOptions struct {
	// Path to the file
	Path string
	// Override lets the file shadow variables of the configured source
	Override bool
	// Optional skips a missing file instead of failing the setup
	Optional bool
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithPrefix sets the prefix of values that do not declare their own.
// An empty prefix disables prefixing.
func WithPrefix(prefix string) Option {
	return func(c *Configuration) {
		c.prefix = values.PrefixOf(prefix)
	}
}

// WithSource sets the resolver values are looked up in. The process environment is used by default.
func WithSource(r envx.Resolver) Option {
	return func(c *Configuration) {
		c.resolver = r
	}
}

// WithDotenv reads variables from a dotenv file during setup.
func WithDotenv(opts DotenvOptions) Option {
	return func(c *Configuration) {
		c.dotenv = &opts
	}
}

// WithBaseDefaults adds plain settings every value of the configuration may override.
func WithBaseDefaults(m map[string]any) Option {
	return func(c *Configuration) {
		c.baseDefaults = append(c.baseDefaults, m)
	}
}

// WithBaseFiles adds yaml, json or toml files with base defaults.
func WithBaseFiles(paths ...string) Option {
	return func(c *Configuration) {
		c.baseFiles = append(c.baseFiles, paths...)
	}
}

// WithBaseReader adds base defaults from data. The format is taken from the extension of name.
func WithBaseReader(name string, data []byte) Option {
	return func(c *Configuration) {
		c.baseReaders = append(c.baseReaders, baseReader{name: name, data: data})
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(c *Configuration) {
		c.log = l
	}
}

// WithPreSetup adds a hook that runs before resolution.
func WithPreSetup(hook PreSetupHook) Option {
	return func(c *Configuration) {
		c.preSetup = append(c.preSetup, hook)
	}
}

// WithPostSetup adds a hook that runs after resolution.
func WithPostSetup(hook PostSetupHook) Option {
	return func(c *Configuration) {
		c.postSetup = append(c.postSetup, hook)
	}
}

type field struct {
	name  string
	value values.Field
}

type computed struct {
	name string
	fn   ComputeFunc
}

// Configuration is an explicit registry of declared settings.
type Configuration struct {
	name     string
	prefix   values.Prefix
	resolver envx.Resolver
	dotenv   *DotenvOptions
	log      Logger

	baseDefaults []map[string]any
	baseFiles    []string
	baseReaders  []baseReader

	preSetup  []PreSetupHook
	postSetup []PostSetupHook

	declared map[string]struct{}
	fields   []field
	plain    map[string]any
	computed []computed
}

// New creates an empty configuration.
func New(name string, opts ...Option) *Configuration {
	c := &Configuration{
		name:     name,
		log:      NewNoopLogger(),
		declared: make(map[string]struct{}),
		plain:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the configuration name.
func (c *Configuration) Name() string {
	return c.name
}

// Scope returns what the configuration shares with its values.
func (c *Configuration) Scope() values.Scope {
	return values.Scope{Resolver: c.resolver, Prefix: c.prefix}
}

func (c *Configuration) declare(name string) error {
	if !settingName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, ok := c.declared[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	c.declared[name] = struct{}{}
	return nil
}

// Add declares a value under name.
func (c *Configuration) Add(name string, v values.Field) error {
	if err := c.declare(name); err != nil {
		return err
	}
	c.fields = append(c.fields, field{name: name, value: v})
	return nil
}

// MustAdd is like Add but panics on error.
func (c *Configuration) MustAdd(name string, v values.Field) *Configuration {
	if err := c.Add(name, v); err != nil {
		panic(err)
	}
	return c
}

// Set declares a plain setting that is published as is.
func (c *Configuration) Set(name string, v any) error {
	if err := c.declare(name); err != nil {
		return err
	}
	c.plain[name] = v
	return nil
}

// Compute declares a setting derived from the namespace after every eager value is published.
func (c *Configuration) Compute(name string, fn ComputeFunc) error {
	if err := c.declare(name); err != nil {
		return err
	}
	c.computed = append(c.computed, computed{name: name, fn: fn})
	return nil
}

// MustCompute is like Compute but panics on error.
func (c *Configuration) MustCompute(name string, fn ComputeFunc) *Configuration {
	if err := c.Compute(name, fn); err != nil {
		panic(err)
	}
	return c
}

// Setup resolves every declared value and publishes the results.
// Missing and invalid values are collected into a single *values.SetupError.
// Any other failure aborts the setup.
func (c *Configuration) Setup() (*Namespace, error) {
	for _, hook := range c.preSetup {
		if err := hook(c); err != nil {
			return nil, c.wrap(err)
		}
	}

	ns := newNamespace(c.name)

	resolver, dotenvPath, err := c.buildResolver()
	if err != nil {
		return nil, c.wrap(err)
	}
	if dotenvPath != "" {
		ns.publish(DotenvLoadedSetting, dotenvPath)
	}

	base, err := c.loadBase()
	if err != nil {
		return nil, c.wrap(err)
	}
	ns.publishAll(base)
	ns.publishAll(c.plain)

	scope := values.Scope{Resolver: resolver, Prefix: c.prefix}
	var failures []error
	for _, f := range c.fields {
		name, value := f.name, f.value
		if value.LateBinding() {
			ns.deferResolve(name, func() (any, map[string]any, error) {
				return value.Resolve(scope, name)
			})
			c.log.Info("setting deferred", "configuration", c.name, "setting", name)
			continue
		}

		resolved, siblings, err := value.Resolve(scope, name)
		if err != nil {
			if values.IsValueError(err) {
				failures = append(failures, err)
				continue
			}
			return nil, c.wrap(err)
		}
		ns.publish(name, resolved)
		ns.publishAll(siblings)
	}

	if len(failures) > 0 {
		c.log.Error("configuration is invalid", "configuration", c.name, "failures", len(failures))
		return nil, &values.SetupError{
			Message: fmt.Sprintf("Couldn't setup configuration '%s'", c.name),
			Errors:  failures,
		}
	}

	for _, cp := range c.computed {
		v, err := cp.fn(ns)
		if err != nil {
			return nil, c.wrap(fmt.Errorf("compute %s: %w", cp.name, err))
		}
		ns.publish(cp.name, v)
	}

	for _, hook := range c.postSetup {
		if err := hook(ns); err != nil {
			return nil, c.wrap(err)
		}
	}

	c.log.Info("configuration loaded", "configuration", c.name, "settings", len(ns.Names()))
	return ns, nil
}

// buildResolver layers the dotenv file over or under the configured resolver.
// It returns the dotenv path when a file was loaded.
func (c *Configuration) buildResolver() (envx.Resolver, string, error) {
	base := c.resolver
	if base == nil {
		base = envx.NewResolver(envx.EnvSource{})
	}
	if c.dotenv == nil || c.dotenv.Path == "" {
		return base, "", nil
	}

	dotenv, err := envx.NewDotenvSource(c.dotenv.Path)
	if err != nil {
		if errors.Is(err, envx.ErrDotenvNotFound) && c.dotenv.Optional {
			c.log.Info("dotenv file skipped", "configuration", c.name, "path", c.dotenv.Path)
			return base, "", nil
		}
		return nil, "", fmt.Errorf("Couldn't read .env file with the path %s: %w", c.dotenv.Path, err)
	}

	layered := envx.ResolverSource{Resolver: base, SourceName: "Configured"}
	var resolver *envx.StandardResolver
	if c.dotenv.Override {
		resolver = envx.NewResolver(dotenv, layered)
	} else {
		resolver = envx.NewResolver(layered, dotenv)
	}

	keys := dotenv.Keys()
	sort.Strings(keys)
	c.log.Info("dotenv file loaded", "configuration", c.name, "path", c.dotenv.Path, "variables", keys)
	return resolver, c.dotenv.Path, nil
}

func (c *Configuration) wrap(err error) error {
	return fmt.Errorf("Couldn't setup configuration '%s': %w", c.name, err)
}
