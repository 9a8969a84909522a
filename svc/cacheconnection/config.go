// Package cacheconnection opens cache clients described by a resolved CacheURL value.
package cacheconnection

import (
	"fmt"
	"strconv"
	"time"

	"github.com/velmie/x/envconf/cacheurl"
)

const (
	// OptionMaxIdle is the OPTIONS key limiting idle pool connections
	OptionMaxIdle = "MAX_IDLE"
	// OptionIdleTimeout is the OPTIONS key holding the idle timeout in seconds
	OptionIdleTimeout = "IDLE_TIMEOUT"

	defaultMaxIdle     = 10
	defaultIdleTimeout = 240 * time.Second
)

// ErrorCode defines string error
type ErrorCode string

// ErrorCode returns error message
func (e ErrorCode) Error() string {
	return string(e)
}

const (
	// ErrUnsupportedBackend is returned when the descriptor names another backend
	ErrUnsupportedBackend = ErrorCode("unsupported cache backend")
	// ErrInvalidDescriptor is returned for malformed descriptors
	ErrInvalidDescriptor = ErrorCode("invalid cache descriptor")
)

type Config struct {
	Backend   string
	Location  string
	KeyPrefix string
	// Timeout is the default entry expiration, zero means the backend default
	Timeout time.Duration

	MaxIdle     int
	IdleTimeout time.Duration
}

// ConfigFromSettings builds a Config from a cache descriptor such as
// the "default" entry of a resolved CacheURL value.
func ConfigFromSettings(descriptor map[string]any) (*Config, error) {
	cfg := &Config{
		Backend:     stringOf(descriptor["BACKEND"]),
		Location:    stringOf(descriptor["LOCATION"]),
		KeyPrefix:   stringOf(descriptor["KEY_PREFIX"]),
		MaxIdle:     defaultMaxIdle,
		IdleTimeout: defaultIdleTimeout,
	}
	if cfg.Backend == "" {
		return nil, fmt.Errorf("%w: BACKEND is missing", ErrInvalidDescriptor)
	}

	timeout, err := intOf(descriptor["TIMEOUT"])
	if err != nil {
		return nil, fmt.Errorf("%w: TIMEOUT: %w", ErrInvalidDescriptor, err)
	}
	cfg.Timeout = time.Duration(timeout) * time.Second

	options, _ := descriptor["OPTIONS"].(map[string]any)
	for k, v := range options {
		switch k {
		case OptionMaxIdle:
			if cfg.MaxIdle, err = intOf(v); err != nil {
				return nil, fmt.Errorf("%w: the option '%s' has invalid value: %w", ErrInvalidDescriptor, k, err)
			}
		case OptionIdleTimeout:
			seconds, err := intOf(v)
			if err != nil {
				return nil, fmt.Errorf("%w: the option '%s' has invalid value: %w", ErrInvalidDescriptor, k, err)
			}
			cfg.IdleTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg, nil
}

// ConfigFromAlias picks alias out of a resolved CacheURL value.
func ConfigFromAlias(caches map[string]any, alias string) (*Config, error) {
	descriptor, ok := caches[alias].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cache alias %q is not configured", alias)
	}
	return ConfigFromSettings(descriptor)
}

func (c *Config) requireBackend(backends ...string) error {
	for _, b := range backends {
		if c.Backend == b {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedBackend, c.Backend)
}

var memcachedBackends = []string{cacheurl.BackendMemcached, cacheurl.BackendPyLibMC}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func intOf(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	case string:
		if t == "" {
			return 0, nil
		}
		return strconv.Atoi(t)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
