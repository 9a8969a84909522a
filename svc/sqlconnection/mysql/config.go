package mysql

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/velmie/x/envconf/dburl"
)

const (
	defaultPort = 3306

	// OptionTLSCertPath is the OPTIONS key holding a PEM file with the server CA
	OptionTLSCertPath = "ssl_ca"
	// OptionMaxOpenConnections is the OPTIONS key limiting open connections
	OptionMaxOpenConnections = "max_open_connections"
	// OptionMaxIdleConnections is the OPTIONS key limiting idle connections
	OptionMaxIdleConnections = "max_idle_connections"
)

// ErrorCode defines string error
type ErrorCode string

// ErrorCode returns error message
func (e ErrorCode) Error() string {
	return string(e)
}

// ErrNotMySQL is returned for descriptors of other database engines
const ErrNotMySQL = ErrorCode("database engine is not MySQL")

var engines = map[string]struct{}{
	"django.db.backends.mysql":             {},
	"django.contrib.gis.db.backends.mysql": {},
	"mysql.connector.django":               {},
}

type Config struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	Params   map[string]string

	MaxOpenConnections int           // leave 0 to use default value
	MaxIdleConnections int           // leave 0 to use default value
	ConnMaxIdleTime    time.Duration // leave 0 to use default value
	ConnMaxLifetime    time.Duration // leave 0 to use default value

	TLSConfig *tls.Config
}

// ConfigFromSettings builds a Config from a database descriptor such as
// the "default" entry of a resolved DatabaseURL value.
// CONN_MAX_AGE becomes the connection lifetime. Known OPTIONS tune the pool and TLS,
// the rest are passed to the driver as DSN parameters.
func ConfigFromSettings(descriptor map[string]any) (*Config, error) {
	parsed, err := dburl.FromSettings(descriptor)
	if err != nil {
		return nil, err
	}
	if _, ok := engines[parsed.Engine]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotMySQL, parsed.Engine)
	}

	res := &Config{
		Host:            parsed.Host,
		Port:            parsed.Port,
		Name:            parsed.Name,
		User:            parsed.User,
		Password:        parsed.Password,
		ConnMaxLifetime: time.Duration(parsed.ConnMaxAge) * time.Second,
	}
	if res.Port == 0 {
		res.Port = defaultPort
	}

	for k, v := range parsed.Options {
		switch k {
		case OptionMaxOpenConnections:
			if res.MaxOpenConnections, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("the option '%s' has invalid value: %w", k, err)
			}
		case OptionMaxIdleConnections:
			if res.MaxIdleConnections, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("the option '%s' has invalid value: %w", k, err)
			}
		case OptionTLSCertPath:
			if res.TLSConfig, err = tlsConfig(v, res.Host); err != nil {
				return nil, err
			}
		default:
			if res.Params == nil {
				res.Params = make(map[string]string)
			}
			res.Params[k] = v
		}
	}

	return res, nil
}

// ConfigFromAlias picks alias out of a resolved DatabaseURL value.
func ConfigFromAlias(databases map[string]any, alias string) (*Config, error) {
	descriptor, ok := databases[alias].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("database alias %q is not configured", alias)
	}
	return ConfigFromSettings(descriptor)
}

func tlsConfig(certPath, host string) (*tls.Config, error) {
	pemFile, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("the option '%s' has invalid value: %w", OptionTLSCertPath, err)
	}

	rootCertPool := x509.NewCertPool()
	if ok := rootCertPool.AppendCertsFromPEM(pemFile); !ok {
		return nil, fmt.Errorf(
			"the option '%s' has invalid value. Please make sure you use a PEM file",
			OptionTLSCertPath,
		)
	}
	return &tls.Config{
		RootCAs:    rootCertPool,
		ServerName: host,
		MinVersion: tls.VersionTLS13,
	}, nil
}
