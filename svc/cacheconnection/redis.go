package cacheconnection

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/velmie/x/envconf/cacheurl"
)

// NewRedisPool creates a connection pool for a redis:// or rediss:// location.
// Connections idle for more than a minute are checked with PING before reuse.
func NewRedisPool(cfg *Config, opts ...redis.DialOption) (*redis.Pool, error) {
	if err := cfg.requireBackend(cacheurl.BackendRedis); err != nil {
		return nil, err
	}
	location := cfg.Location
	return &redis.Pool{
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
		MaxIdle:     cfg.MaxIdle,
		IdleTimeout: cfg.IdleTimeout,
		Dial:        func() (redis.Conn, error) { return redis.DialURL(location, opts...) },
	}, nil
}
