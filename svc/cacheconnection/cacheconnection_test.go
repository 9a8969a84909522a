package cacheconnection_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmie/x/envconf/cacheurl"
	"github.com/velmie/x/envconf/svc/cacheconnection"
)

func descriptor(t *testing.T, raw string) map[string]any {
	t.Helper()
	cfg, err := cacheurl.Parse(raw, cacheurl.Options{})
	require.NoError(t, err)
	return cfg.Settings()
}

func TestConfigFromSettings(t *testing.T) {
	cfg, err := cacheconnection.ConfigFromSettings(
		descriptor(t, "redis://cache.internal:6379/2?key_prefix=shop&timeout=300&max_idle=3&idle_timeout=60"),
	)
	require.NoError(t, err)

	assert.Equal(t, &cacheconnection.Config{
		Backend:     cacheurl.BackendRedis,
		Location:    "redis://cache.internal:6379/2",
		KeyPrefix:   "shop",
		Timeout:     5 * time.Minute,
		MaxIdle:     3,
		IdleTimeout: time.Minute,
	}, cfg)
}

func TestConfigFromSettingsInvalid(t *testing.T) {
	_, err := cacheconnection.ConfigFromSettings(map[string]any{"LOCATION": "x"})
	assert.ErrorIs(t, err, cacheconnection.ErrInvalidDescriptor)

	_, err = cacheconnection.ConfigFromSettings(descriptor(t, "redis://localhost?max_idle=lots"))
	assert.ErrorIs(t, err, cacheconnection.ErrInvalidDescriptor)
	assert.Contains(t, err.Error(), "the option 'MAX_IDLE' has invalid value")
}

func TestConfigFromAlias(t *testing.T) {
	caches := map[string]any{"default": descriptor(t, "locmem://")}

	cfg, err := cacheconnection.ConfigFromAlias(caches, "default")
	require.NoError(t, err)
	assert.Equal(t, cacheurl.BackendLocMem, cfg.Backend)

	_, err = cacheconnection.ConfigFromAlias(caches, "sessions")
	assert.EqualError(t, err, `cache alias "sessions" is not configured`)
}

func TestNewRedisPool(t *testing.T) {
	cfg, err := cacheconnection.ConfigFromSettings(descriptor(t, "redis://localhost:6379/0"))
	require.NoError(t, err)

	pool, err := cacheconnection.NewRedisPool(cfg)
	require.NoError(t, err)
	assert.Equal(t, 10, pool.MaxIdle)
	assert.Equal(t, 240*time.Second, pool.IdleTimeout)
	assert.NotNil(t, pool.Dial)
	assert.NoError(t, pool.TestOnBorrow(nil, time.Now()))
}

func TestNewRedisPoolWrongBackend(t *testing.T) {
	cfg, err := cacheconnection.ConfigFromSettings(descriptor(t, "memcached://localhost:11211"))
	require.NoError(t, err)

	_, err = cacheconnection.NewRedisPool(cfg)
	assert.ErrorIs(t, err, cacheconnection.ErrUnsupportedBackend)
}

func TestServers(t *testing.T) {
	assert.Equal(t, []string{"10.0.0.1:11211", "10.0.0.2:11211"}, cacheconnection.Servers("10.0.0.1:11211;10.0.0.2:11211"))
	assert.Equal(t, []string{"/tmp/memcached.sock"}, cacheconnection.Servers("unix:/tmp/memcached.sock"))
	assert.Empty(t, cacheconnection.Servers(""))
}

func TestNewMemcacheClient(t *testing.T) {
	cfg, err := cacheconnection.ConfigFromSettings(descriptor(t, "pymemcached://127.0.0.1:11211?max_idle=4"))
	require.NoError(t, err)

	client, err := cacheconnection.NewMemcacheClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, client.MaxIdleConns)

	cfg.Backend = cacheurl.BackendRedis
	_, err = cacheconnection.NewMemcacheClient(cfg)
	assert.ErrorIs(t, err, cacheconnection.ErrUnsupportedBackend)
}
