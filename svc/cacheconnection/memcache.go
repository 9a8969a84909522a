package cacheconnection

import (
	"fmt"
	"strings"

	"github.com/bradfitz/gomemcache/memcache"
)

// Servers splits a memcached LOCATION into addresses understood by gomemcache.
// "unix:" locations become socket paths.
func Servers(location string) []string {
	var res []string
	for _, s := range strings.Split(location, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		res = append(res, strings.TrimPrefix(s, "unix:"))
	}
	return res
}

// NewMemcacheClient creates a client for every server of a memcached location.
func NewMemcacheClient(cfg *Config) (*memcache.Client, error) {
	if err := cfg.requireBackend(memcachedBackends...); err != nil {
		return nil, err
	}
	servers := Servers(cfg.Location)
	if len(servers) == 0 {
		return nil, fmt.Errorf("%w: LOCATION is empty", ErrInvalidDescriptor)
	}
	client := memcache.New(servers...)
	client.MaxIdleConns = cfg.MaxIdle
	return client, nil
}
