package values

import (
	"strings"

	"github.com/velmie/x/envconf/cacheurl"
	"github.com/velmie/x/envconf/dburl"
	"github.com/velmie/x/envconf/emailurl"
	"github.com/velmie/x/envconf/ipx"
	"github.com/velmie/x/envconf/searchurl"
)

// DefaultAlias is the key a parsed backend descriptor is nested under.
const DefaultAlias = "default"

func init() {
	Casters.Register("dburl", Caster[map[string]any](func(raw string) (map[string]any, error) {
		return parseDatabase(raw, dburl.Options{})
	}))
	Casters.Register("cacheurl", Caster[map[string]any](parseCache))
	Casters.Register("emailurl", Caster[map[string]any](parseEmail))
	Casters.Register("searchurl", Caster[map[string]any](parseSearch))
	Casters.Register("cidr", Caster[ipx.Ranges](func(raw string) (ipx.Ranges, error) {
		return ipx.ParseList(nil, raw)
	}))

	for _, group := range [][]string{dburl.Engines(), cacheurl.Backends(), emailurl.Backends(), searchurl.Engines()} {
		for _, name := range group {
			KnownBackends.Register(name, name)
		}
	}
}

func parseDatabase(raw string, opts dburl.Options) (map[string]any, error) {
	cfg, err := dburl.Parse(raw, opts)
	if err != nil {
		return nil, err
	}
	return cfg.Settings(), nil
}

func parseCache(raw string) (map[string]any, error) {
	cfg, err := cacheurl.Parse(raw, cacheurl.Options{})
	if err != nil {
		return nil, err
	}
	return cfg.Settings(), nil
}

func parseEmail(raw string) (map[string]any, error) {
	cfg, err := emailurl.Parse(raw, emailurl.Options{})
	if err != nil {
		return nil, err
	}
	return cfg.Settings(), nil
}

func parseSearch(raw string) (map[string]any, error) {
	cfg, err := searchurl.Parse(raw, searchurl.Options{})
	if err != nil {
		return nil, err
	}
	return cfg.Settings(), nil
}

// urlDefaults makes a URL value read <environName> without a prefix unless told otherwise.
func urlDefaults(environName string) []Option {
	return []Option{WithEnvironName(environName), WithPrefix("")}
}

// EmailURL declares an email backend URL read from EMAIL_URL.
// Its EMAIL_* keys are published as separate settings.
func EmailURL(opts ...Option) (*Value[map[string]any], error) {
	const kind = "EmailURLValue"
	o := newOptions(urlDefaults("EMAIL_URL"), opts)

	def, err := mapDefault(kind, o.def, parseEmail)
	if err != nil {
		return nil, err
	}
	v, err := newValue[map[string]any](kind, o, parseEmail, def)
	if err != nil {
		return nil, err
	}
	v.multiple = true
	v.expand = func(_ string, m map[string]any) map[string]any {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	}
	return v, nil
}

// DatabaseURL declares a database URL read from DATABASE_URL. The descriptor is
// nested under the alias, so the result fits a DATABASES setting.
func DatabaseURL(opts ...Option) (*Value[map[string]any], error) {
	o := newOptions(urlDefaults("DATABASE_URL"), opts)
	database := o.database
	return dictBackend("DatabaseURLValue", o, func(raw string) (map[string]any, error) {
		return parseDatabase(raw, database)
	})
}

// CacheURL declares a cache URL read from CACHE_URL, nested under the alias.
func CacheURL(opts ...Option) (*Value[map[string]any], error) {
	return dictBackend("CacheURLValue", newOptions(urlDefaults("CACHE_URL"), opts), parseCache)
}

// SearchURL declares a search engine URL read from SEARCH_URL, nested under the alias.
func SearchURL(opts ...Option) (*Value[map[string]any], error) {
	return dictBackend("SearchURLValue", newOptions(urlDefaults("SEARCH_URL"), opts), parseSearch)
}

// dictBackend builds a value resolving to {alias: descriptor}. Fan-out publishes every
// descriptor key as <NAME>_<KEY>.
func dictBackend(kind string, o *options, parse Caster[map[string]any]) (*Value[map[string]any], error) {
	alias := o.alias
	cast := func(raw string) (map[string]any, error) {
		descriptor, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return map[string]any{alias: descriptor}, nil
	}

	def, err := mapDefault(kind, o.def, cast)
	if err != nil {
		return nil, err
	}
	v, err := newValue[map[string]any](kind, o, cast, def)
	if err != nil {
		return nil, err
	}
	v.multiple = true
	v.expand = func(name string, m map[string]any) map[string]any {
		out := make(map[string]any)
		descriptor, ok := m[alias].(map[string]any)
		if !ok {
			return out
		}
		prefix := strings.ToUpper(name) + "_"
		for k, val := range descriptor {
			out[prefix+k] = val
		}
		return out
	}
	return v, nil
}

// mapDefault converts a URL default eagerly. A missing default is an empty map.
func mapDefault(kind string, def any, cast Caster[map[string]any]) (map[string]any, error) {
	switch d := def.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return cloneDefault(d).(map[string]any), nil
	case string:
		m, err := cast(d)
		if err != nil {
			return nil, configError(kind, "%w %q: %w", ErrInvalidDefault, d, err)
		}
		return m, nil
	default:
		return nil, configError(kind, "%w %#v: expected a URL", ErrInvalidDefault, def)
	}
}

// Backends declares a list of backend names registered in KnownBackends.
// Unknown names in the default fail construction.
func Backends(opts ...Option) (*Value[[]string], error) {
	const kind = "BackendsValue"
	o := newOptions(nil, opts)

	known := func(name string) (string, error) {
		if _, err := KnownBackends.Lookup(name); err != nil {
			return "", err
		}
		return name, nil
	}
	seq := sequence[string]{noun: "list", separator: o.separator, item: known}

	var names []string
	switch d := o.def.(type) {
	case nil:
		names = []string{}
	case []string:
		names = append([]string{}, d...)
	case string:
		names = seq.split(d)
	default:
		return nil, configError(kind, "%w %#v: expected []string", ErrInvalidDefault, o.def)
	}
	for _, name := range names {
		if _, err := known(name); err != nil {
			return nil, &ConfigurationError{Kind: kind, Cause: err}
		}
	}
	return newValue(kind, o, seq.convert, names)
}

// CIDRList declares a list of CIDR blocks such as "10.0.0.0/8,192.168.0.0/16".
func CIDRList(opts ...Option) (*Value[ipx.Ranges], error) {
	const kind = "CIDRListValue"
	o := newOptions(nil, opts)
	seq := sequence[string]{noun: "list", separator: o.separator, item: ParseString}

	cast := func(raw string) (ipx.Ranges, error) {
		return ipx.ParseList(nil, seq.split(raw)...)
	}

	var def ipx.Ranges
	switch d := o.def.(type) {
	case nil:
		def = ipx.Ranges{}
	case ipx.Ranges:
		def = append(ipx.Ranges{}, d...)
	case []string:
		ranges, err := ipx.ParseList(nil, d...)
		if err != nil {
			return nil, configError(kind, "%w: %w", ErrInvalidDefault, err)
		}
		def = ranges
	case string:
		ranges, err := cast(d)
		if err != nil {
			return nil, configError(kind, "%w: %w", ErrInvalidDefault, err)
		}
		def = ranges
	default:
		return nil, configError(kind, "%w %#v: expected CIDR blocks", ErrInvalidDefault, o.def)
	}
	return newValue(kind, o, cast, def)
}
