package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/velmie/x/envconf/envx"
	"github.com/velmie/x/envconf/internal/logging"
	"github.com/velmie/x/envconf/ipx"
	"github.com/velmie/x/envconf/settings"
)

func main() {
	os.Exit(run(os.Args[1:], envx.NewResolver(envx.EnvSource{}), os.Stdout, os.Stderr))
}

func run(args []string, source envx.Resolver, stdout, stderr io.Writer) int {
	app := kingpin.New("envconf", "Resolves a configuration from the environment and prints its settings")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	dotenv := app.Flag("dotenv", "Path to a .env file").String()
	dotenvOverride := app.Flag("dotenv-override", "Let the .env file shadow the environment").Bool()
	name := app.Flag("configuration", "Configuration to load, DJANGO_CONFIGURATION is used when empty").String()
	baseFiles := app.Flag("base", "YAML, JSON or TOML file with base settings").Strings()
	format := app.Flag("format", "Output format").Default("yaml").Enum("yaml", "json")
	logLevel := app.Flag("log-level", "Minimal log level").Default("warn").String()
	checkConnections := app.Flag("check-connections", "Connect to the default database and cache").Bool()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "envconf: %s\n", err)
		return 2
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %s\n", err)
		return 2
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logging.Adapt(logger)

	opts := []settings.Option{
		settings.WithSource(source),
		settings.WithLogger(log),
		settings.WithBaseFiles(*baseFiles...),
	}
	if *dotenv != "" {
		opts = append(opts, settings.WithDotenv(settings.DotenvOptions{
			Path:     *dotenv,
			Override: *dotenvOverride,
		}))
	}

	registry := settings.NewRegistry(settings.WithSelectorSource(source))
	if err = registry.Register(configurations(opts...)...); err != nil {
		logger.Error("cannot register configurations", zap.Error(err))
		return 1
	}

	var cfg *settings.Configuration
	if *name != "" {
		cfg, err = registry.Get(*name)
	} else {
		cfg, err = registry.Select()
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ns, err := cfg.Setup()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *checkConnections {
		if err = check(ns, log); err != nil {
			logger.Error("connection check failed", zap.Error(err))
			return 1
		}
	}

	all, err := ns.All()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err = write(stdout, *format, printable(all)); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func write(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printable turns resolved settings into plain maps, slices and scalars.
func printable(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = printable(val)
		}
		return out
	case map[string]struct{}:
		out := make([]string, 0, len(t))
		for k := range t {
			out = append(out, k)
		}
		sort.Strings(out)
		return out
	case ipx.Ranges:
		out := make([]string, len(t))
		for i, r := range t {
			out[i] = r.String()
		}
		return out
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}
