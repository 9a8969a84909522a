package mysql

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	defaultTLSConfigName = "mysqlTLSConfig"

	defaultConnMaxIdleTime = 10 * time.Minute
	defaultConnMaxLifetime = 1 * time.Hour
)

type Logger interface {
	Info(msg string, args ...any)
}

// Opener opens a database handle, sql.Open by default.
type Opener func(driverName, dsn string) (*sql.DB, error)

type connectionOptions struct {
	open Opener
}

// ConnectionOption tunes NewConnection.
type ConnectionOption func(*connectionOptions)

// WithOpener replaces sql.Open.
func WithOpener(open Opener) ConnectionOption {
	return func(o *connectionOptions) {
		o.open = open
	}
}

// DSN formats the driver connection string for cfg.
func DSN(cfg *Config) string {
	dsnCfg := mysql.NewConfig()
	dsnCfg.User = cfg.User
	dsnCfg.Passwd = cfg.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dsnCfg.DBName = cfg.Name
	dsnCfg.ParseTime = true
	if len(cfg.Params) > 0 {
		dsnCfg.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			dsnCfg.Params[k] = v
		}
	}
	if cfg.TLSConfig != nil {
		dsnCfg.TLSConfig = defaultTLSConfigName
	}
	return dsnCfg.FormatDSN()
}

// NewConnection creates new database connection
func NewConnection(cfg *Config, log Logger, opts ...ConnectionOption) (*sql.DB, error) {
	o := connectionOptions{open: sql.Open}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.TLSConfig != nil {
		if err := mysql.RegisterTLSConfig(defaultTLSConfigName, cfg.TLSConfig); err != nil {
			return nil, fmt.Errorf("cannot register mysql tls config: %w", err)
		}
	}

	db, err := o.open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("cannot open mysql connection: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql connection is not established: %w", err)
	}

	if cfg.MaxIdleConnections == 0 || cfg.MaxOpenConnections == 0 {
		serverMax, err := maxConnections(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		cfg.applyPoolDefaults(serverMax)
	}
	if cfg.ConnMaxIdleTime == 0 {
		cfg.ConnMaxIdleTime = defaultConnMaxIdleTime
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = defaultConnMaxLifetime
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("database pool configured",
		"host", cfg.Host,
		"database", cfg.Name,
		"maxOpenConn", cfg.MaxOpenConnections,
		"maxIdleConn", cfg.MaxIdleConnections,
		"idleMinutes", cfg.ConnMaxIdleTime.Minutes(),
		"lifetimeMinutes", cfg.ConnMaxLifetime.Minutes(),
	)

	return db, nil
}

// maxConnections reads the server side connection limit.
func maxConnections(db *sql.DB) (int, error) {
	var (
		name  string
		limit int
	)
	if err := db.QueryRow("SHOW VARIABLES LIKE 'max_connections'").Scan(&name, &limit); err != nil {
		return 0, fmt.Errorf("cannot get maximum number of connections: %w", err)
	}
	return limit, nil
}

// applyPoolDefaults fills unset pool sizes as shares of the server limit, never below one.
func (c *Config) applyPoolDefaults(serverMax int) {
	const (
		openShare = .9
		idleShare = .1
	)
	if c.MaxOpenConnections == 0 {
		c.MaxOpenConnections = share(serverMax, openShare)
	}
	if c.MaxIdleConnections == 0 {
		c.MaxIdleConnections = share(serverMax, idleShare)
	}
}

func share(total int, fraction float64) int {
	return max(int(float64(total)*fraction), 1)
}
