package envx

// DefaultResolver is the global resolver used by the package functions.
// It reads the process environment and ignores source errors.
var DefaultResolver Resolver = NewResolver(EnvSource{}).WithErrorHandler(ContinueOnError)

// Get looks up a variable by name from the DefaultResolver.
// Errors from the resolver are ignored.
func Get(name string) *Variable {
	v, err := DefaultResolver.Get(name)
	if err != nil || v == nil {
		return &Variable{Name: name, AllNames: []string{name}}
	}
	return v
}

// Coalesce tries a list of variable names and returns the first one found
// using the DefaultResolver.
func Coalesce(names ...string) *Variable {
	v, err := DefaultResolver.Coalesce(names...)
	if err != nil || v == nil {
		v = &Variable{AllNames: names}
		if len(names) > 0 {
			v.Name = names[0]
		}
	}
	return v
}
