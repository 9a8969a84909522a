package values

import (
	"strings"

	"github.com/velmie/x/envconf/envx"
)

// DefaultPrefix is prepended to environment variable names of values
// that neither declare their own prefix nor inherit one from a Scope.
var DefaultPrefix = "DJANGO"

// Prefix is a tri-state prefix setting: unset, explicit, or explicitly empty.
type Prefix struct {
	value string
	set   bool
}

// PrefixOf returns an explicit prefix. An empty string suppresses prefixing.
func PrefixOf(p string) Prefix {
	return Prefix{value: p, set: true}
}

// IsSet reports whether the prefix was given explicitly.
func (p Prefix) IsSet() bool {
	return p.set
}

// String returns the prefix without its trailing underscore.
func (p Prefix) String() string {
	return strings.TrimSuffix(p.value, "_")
}

// Scope carries what a declaring configuration shares with its values.
type Scope struct {
	// Resolver is queried for environment variables, envx.DefaultResolver when nil
	Resolver envx.Resolver
	// Prefix applies to values without their own prefix
	Prefix Prefix
}

func (s Scope) resolver() envx.Resolver {
	if s.Resolver == nil {
		return envx.DefaultResolver
	}
	return s.Resolver
}

// LookupKey computes the environment variable name for a declared setting.
// environName, when not empty, replaces the declared name. The prefix precedence is
// value, then scope, then DefaultPrefix.
func LookupKey(declared, environName string, value, scope Prefix) string {
	base := declared
	if environName != "" {
		base = environName
	}
	base = strings.ToUpper(base)

	prefix := DefaultPrefix
	switch {
	case value.IsSet():
		prefix = value.String()
	case scope.IsSet():
		prefix = scope.String()
	default:
		prefix = strings.TrimSuffix(prefix, "_")
	}

	if prefix == "" {
		return base
	}
	return prefix + "_" + base
}
