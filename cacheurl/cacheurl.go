// Package cacheurl parses cache URLs such as redis://host:6379/1 into a CACHES descriptor.
package cacheurl

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrorCode defines string error
type ErrorCode string

func (e ErrorCode) Error() string {
	return string(e)
}

const (
	// ErrUnknownScheme is returned for URLs whose scheme has no backend
	ErrUnknownScheme = ErrorCode("unknown cache scheme")
	// ErrInvalidURL is returned when the URL cannot be parsed
	ErrInvalidURL = ErrorCode("invalid cache URL")
)

const (
	BackendDatabase  = "django.core.cache.backends.db.DatabaseCache"
	BackendDummy     = "django.core.cache.backends.dummy.DummyCache"
	BackendFile      = "django.core.cache.backends.filebased.FileBasedCache"
	BackendLocMem    = "django.core.cache.backends.locmem.LocMemCache"
	BackendMemcached = "django.core.cache.backends.memcached.PyMemcacheCache"
	BackendPyLibMC   = "django.core.cache.backends.memcached.PyLibMCCache"
	BackendRedis     = "django.core.cache.backends.redis.RedisCache"
)

var backends = map[string]string{
	"db":          BackendDatabase,
	"dummy":       BackendDummy,
	"file":        BackendFile,
	"locmem":      BackendLocMem,
	"memcached":   BackendMemcached,
	"pymemcached": BackendMemcached,
	"pylibmc":     BackendPyLibMC,
	"redis":       BackendRedis,
	"rediss":      BackendRedis,
}

// Backends returns every backend name a URL can resolve to.
func Backends() []string {
	seen := make(map[string]struct{}, len(backends))
	res := make([]string, 0, len(backends))
	for _, b := range backends {
		if _, ok := seen[b]; !ok {
			seen[b] = struct{}{}
			res = append(res, b)
		}
	}
	sort.Strings(res)
	return res
}

// Options is reserved for caster parameters; the cache parser has none yet.
type Options struct{}

// Config is a parsed cache URL.
type Config struct {
	Scheme    string
	Backend   string
	Location  string
	KeyPrefix string
	Timeout   *int
	Options   map[string]string

	// Hosts lists host:port pairs for network backends
	Hosts    []string
	Username string
	Password string
	Database int
}

// Parse turns a cache URL into a Config.
func Parse(raw string, _ Options) (Config, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	backend, ok := backends[u.Scheme]
	if !ok {
		return Config{}, fmt.Errorf("%w %q", ErrUnknownScheme, u.Scheme)
	}

	cfg := Config{Scheme: u.Scheme, Backend: backend}
	if u.User != nil {
		cfg.Username = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}
	if u.Host != "" {
		cfg.Hosts = strings.Split(u.Host, ",")
	}

	query := u.Query()
	cfg.KeyPrefix = query.Get("key_prefix")
	if t := query.Get("timeout"); t != "" {
		timeout, err := strconv.Atoi(t)
		if err != nil {
			return Config{}, fmt.Errorf("%w: timeout %q is not a number", ErrInvalidURL, t)
		}
		cfg.Timeout = &timeout
	}
	for k := range query {
		if k == "key_prefix" || k == "timeout" {
			continue
		}
		if cfg.Options == nil {
			cfg.Options = make(map[string]string)
		}
		cfg.Options[strings.ToUpper(k)] = query.Get(k)
	}

	switch u.Scheme {
	case "db", "locmem":
		cfg.Location = u.Host + u.Path
	case "file":
		cfg.Location = u.Path
	case "memcached", "pymemcached", "pylibmc":
		if len(cfg.Hosts) > 0 {
			cfg.Location = strings.Join(cfg.Hosts, ";")
		} else {
			cfg.Location = "unix:" + u.Path
		}
	case "redis", "rediss":
		if db := strings.Trim(u.Path, "/"); db != "" {
			cfg.Database, err = strconv.Atoi(db)
			if err != nil {
				return Config{}, fmt.Errorf("%w: database %q is not a number", ErrInvalidURL, db)
			}
		}
		loc := url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host, Path: u.Path}
		cfg.Location = loc.String()
	}

	return cfg, nil
}

// Settings returns the descriptor with upper-case keys.
func (c Config) Settings() map[string]any {
	res := map[string]any{
		"BACKEND":    c.Backend,
		"LOCATION":   c.Location,
		"KEY_PREFIX": c.KeyPrefix,
	}
	if c.Backend == BackendDummy {
		delete(res, "LOCATION")
	}
	if c.Timeout != nil {
		res["TIMEOUT"] = *c.Timeout
	}
	if len(c.Options) > 0 {
		options := make(map[string]any, len(c.Options))
		for k, v := range c.Options {
			options[k] = v
		}
		res["OPTIONS"] = options
	}
	return res
}
