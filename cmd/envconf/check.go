package main

import (
	"errors"
	"fmt"

	"github.com/velmie/x/envconf/cacheurl"
	"github.com/velmie/x/envconf/internal/logging"
	"github.com/velmie/x/envconf/settings"
	"github.com/velmie/x/envconf/svc/cacheconnection"
	"github.com/velmie/x/envconf/svc/sqlconnection/mysql"
	"github.com/velmie/x/envconf/values"
)

// check connects to the default database and cache when their backends are supported.
func check(ns *settings.Namespace, log *logging.Logger) error {
	if err := checkDatabase(ns, log); err != nil {
		return err
	}
	return checkCache(ns, log)
}

func checkDatabase(ns *settings.Namespace, log *logging.Logger) error {
	databases, err := ns.Get("DATABASES")
	if err != nil {
		return err
	}
	m, _ := databases.(map[string]any)
	cfg, err := mysql.ConfigFromAlias(m, values.DefaultAlias)
	if errors.Is(err, mysql.ErrNotMySQL) {
		log.Info("database check skipped", "reason", err.Error())
		return nil
	}
	if err != nil {
		return err
	}

	db, err := mysql.NewConnection(cfg, log)
	if err != nil {
		return err
	}
	return db.Close()
}

func checkCache(ns *settings.Namespace, log *logging.Logger) error {
	caches, err := ns.Get("CACHES")
	if err != nil {
		return err
	}
	m, _ := caches.(map[string]any)
	cfg, err := cacheconnection.ConfigFromAlias(m, values.DefaultAlias)
	if err != nil {
		return err
	}

	switch cfg.Backend {
	case cacheurl.BackendRedis:
		pool, err := cacheconnection.NewRedisPool(cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		conn := pool.Get()
		defer conn.Close()
		if _, err = conn.Do("PING"); err != nil {
			return fmt.Errorf("redis is not reachable: %w", err)
		}
	case cacheurl.BackendMemcached, cacheurl.BackendPyLibMC:
		client, err := cacheconnection.NewMemcacheClient(cfg)
		if err != nil {
			return err
		}
		if err = client.Ping(); err != nil {
			return fmt.Errorf("memcached is not reachable: %w", err)
		}
	default:
		log.Info("cache check skipped", "backend", cfg.Backend)
		return nil
	}
	log.Info("cache is reachable", "backend", cfg.Backend)
	return nil
}
