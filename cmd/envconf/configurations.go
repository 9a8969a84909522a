package main

import (
	"fmt"

	"github.com/velmie/x/envconf/settings"
	"github.com/velmie/x/envconf/values"
)

// common declares the settings every configuration shares.
func common(name string, opts ...settings.Option) *settings.Configuration {
	cfg := settings.New(name, opts...)
	cfg.MustAdd("ALLOWED_HOSTS", values.Must(values.List(values.Default([]string{"localhost"}))))
	cfg.MustAdd("INTERNAL_IPS", values.Must(values.CIDRList(values.Default("127.0.0.1/32"))))
	cfg.MustAdd("TIME_ZONE", values.Must(values.String(values.Default("UTC"))))
	cfg.MustAdd("ADMINS", values.Must(values.SingleNestedTuple(
		values.WithHelpText("name,email pairs separated by ;"),
	)))
	cfg.MustAdd("DATABASES", values.Must(values.DatabaseURL(values.Default("sqlite://:memory:"))))
	cfg.MustAdd("CACHES", values.Must(values.CacheURL(values.Default("locmem://"))))
	cfg.MustAdd("EMAIL", values.Must(values.EmailURL(values.Default("console://"))))
	return cfg
}

func configurations(opts ...settings.Option) []*settings.Configuration {
	dev := common("Dev", opts...)
	dev.MustAdd("DEBUG", values.Must(values.Boolean(values.Default(true))))
	dev.MustAdd("SECRET_KEY", values.Must(values.String(values.Default("insecure-development-key"))))

	prod := common("Prod", opts...)
	prod.MustAdd("DEBUG", values.Must(values.Boolean(values.Default(false))))
	prod.MustAdd("SECRET_KEY", values.Must(values.Secret(
		values.WithExample(values.GenSecretKey),
	)))
	prod.MustAdd("SERVER_EMAIL", values.Must(values.Email(values.Default("root@localhost"))))
	prod.MustAdd("CONN_WORKERS", values.Must(values.PositiveInteger(values.Default(4))))
	prod.MustCompute("SECURE_SSL_REDIRECT", func(ns *settings.Namespace) (any, error) {
		debug, err := ns.Get("DEBUG")
		if err != nil {
			return nil, err
		}
		on, ok := debug.(bool)
		if !ok {
			return nil, fmt.Errorf("DEBUG is %T, not bool", debug)
		}
		return !on, nil
	})

	return []*settings.Configuration{dev, prod}
}
