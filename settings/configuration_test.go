package settings_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmie/x/envconf/envx"
	"github.com/velmie/x/envconf/settings"
	"github.com/velmie/x/envconf/values"
)

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func sourceOf(env map[string]string) settings.Option {
	return settings.WithSource(envx.NewResolver(envx.NewMapSource(env, "test")))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestConfigurationAddValidatesNames(t *testing.T) {
	cfg := settings.New("Test")

	require.NoError(t, cfg.Add("DEBUG", values.Must(values.Boolean())))
	assert.ErrorIs(t, cfg.Add("DEBUG", values.Must(values.Boolean())), settings.ErrDuplicateName)
	assert.ErrorIs(t, cfg.Set("DEBUG", true), settings.ErrDuplicateName)
	assert.ErrorIs(t, cfg.Add("debug", values.Must(values.Boolean())), settings.ErrInvalidName)
	assert.ErrorIs(t, cfg.Set("_PRIVATE", 1), settings.ErrInvalidName)

	assert.Panics(t, func() {
		cfg.MustAdd("DEBUG", values.Must(values.Boolean()))
	})
	assert.Panics(t, func() {
		cfg.MustCompute("DEBUG", func(*settings.Namespace) (any, error) { return false, nil })
	})
	assert.NotPanics(t, func() {
		cfg.MustCompute("TEMPLATE_DEBUG", func(*settings.Namespace) (any, error) { return false, nil })
	})
}

func TestConfigurationSetup(t *testing.T) {
	log := &recordingLogger{}
	cfg := settings.New("Prod",
		sourceOf(map[string]string{
			"DJANGO_DEBUG":   "yes",
			"DJANGO_WORKERS": "8",
			"DATABASE_URL":   "sqlite://",
		}),
		settings.WithLogger(log),
	)
	cfg.MustAdd("DEBUG", values.Must(values.Boolean()))
	cfg.MustAdd("WORKERS", values.Must(values.PositiveInteger(values.Default(1))))
	cfg.MustAdd("TIMEOUT", values.Must(values.Integer(values.Default(30))))
	cfg.MustAdd("DATABASES", values.Must(values.DatabaseURL()))
	require.NoError(t, cfg.Set("LANGUAGE_CODE", "en-us"))

	ns, err := cfg.Setup()
	require.NoError(t, err)
	assert.Equal(t, "Prod", ns.Name())

	debug, err := ns.Get("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, true, debug)

	workers, _ := ns.Lookup("WORKERS")
	assert.Equal(t, 8, workers)
	timeout, _ := ns.Lookup("TIMEOUT")
	assert.Equal(t, 30, timeout)
	lang, _ := ns.Lookup("LANGUAGE_CODE")
	assert.Equal(t, "en-us", lang)

	engine, ok := ns.Lookup("DATABASES_ENGINE")
	require.True(t, ok)
	assert.Equal(t, "django.db.backends.sqlite3", engine)

	assert.Contains(t, log.infos, "configuration loaded")
	assert.Empty(t, log.errors)
}

func TestConfigurationPrefix(t *testing.T) {
	cfg := settings.New("Acme",
		settings.WithPrefix("ACME"),
		sourceOf(map[string]string{"ACME_NAME": "acme", "DJANGO_NAME": "django", "OWN_LEVEL": "debug"}),
	)
	cfg.MustAdd("NAME", values.Must(values.String()))
	cfg.MustAdd("LEVEL", values.Must(values.String(values.WithPrefix("OWN"))))

	ns, err := cfg.Setup()
	require.NoError(t, err)
	name, _ := ns.Lookup("NAME")
	assert.Equal(t, "acme", name)
	level, _ := ns.Lookup("LEVEL")
	assert.Equal(t, "debug", level)
	assert.Equal(t, "ACME_NAME", values.Must(values.String()).EnvKey(cfg.Scope(), "NAME"))
}

func TestConfigurationCollectsValueErrors(t *testing.T) {
	log := &recordingLogger{}
	cfg := settings.New("Broken",
		sourceOf(map[string]string{"DJANGO_WORKERS": "many"}),
		settings.WithLogger(log),
	)
	cfg.MustAdd("WORKERS", values.Must(values.Integer()))
	cfg.MustAdd("TEST", values.Must(values.String(values.Required())))

	ns, err := cfg.Setup()
	require.Error(t, err)
	assert.Nil(t, ns)

	var setupErr *values.SetupError
	require.ErrorAs(t, err, &setupErr)
	require.Len(t, setupErr.Errors, 2)
	assert.Equal(t, "Couldn't setup configuration 'Broken'\n"+
		"    * WORKERS was given an invalid value: Cannot interpret value \"many\"\n"+
		"        - WORKERS is taken from the environment variable DJANGO_WORKERS as a IntegerValue\n"+
		"        - 'many' was received but that is invalid\n"+
		"    * Value of TEST could not be retrieved from environment\n"+
		"        - TEST is taken from the environment variable DJANGO_TEST as a Value",
		err.Error())
	assert.Equal(t, []string{"configuration is invalid"}, log.errors)
}

func TestConfigurationPassesThroughSourceErrors(t *testing.T) {
	failure := errors.New("connection refused")
	cfg := settings.New("Remote", settings.WithSource(envx.NewResolver(failingSource{err: failure})))
	cfg.MustAdd("TOKEN", values.Must(values.String()))

	_, err := cfg.Setup()
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "Couldn't setup configuration 'Remote'")

	var setupErr *values.SetupError
	assert.False(t, errors.As(err, &setupErr))
}

type failingSource struct {
	err error
}

func (s failingSource) Lookup(string) (string, bool, error) {
	return "", false, s.err
}

func (s failingSource) Name() string {
	return "failing"
}

func TestConfigurationLateBinding(t *testing.T) {
	source := envx.NewMapSource(map[string]string{}, "test")
	cfg := settings.New("Lazy", settings.WithSource(envx.NewResolver(source)))
	cfg.MustAdd("CACHES", values.Must(values.CacheURL(values.WithLateBinding(true))))
	cfg.MustAdd("API_KEY", values.Must(values.Secret(values.WithLateBinding(true))))

	ns, err := cfg.Setup()
	require.NoError(t, err)
	assert.Equal(t, []string{"API_KEY", "CACHES"}, ns.Names())

	source.Set("CACHE_URL", "locmem://")
	caches, err := ns.Get("CACHES")
	require.NoError(t, err)
	assert.Contains(t, caches, "default")

	backend, ok := ns.Lookup("CACHES_BACKEND")
	require.True(t, ok)
	assert.Equal(t, "django.core.cache.backends.locmem.LocMemCache", backend)

	_, err = ns.Get("API_KEY")
	var retrieval *values.ValueRetrievalError
	assert.ErrorAs(t, err, &retrieval)
}

func TestConfigurationDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, path, "DJANGO_NAME=from-file\nDJANGO_COLOR=blue\n")

	declare := func(opts ...settings.Option) *settings.Configuration {
		cfg := settings.New("Dotenv", opts...)
		cfg.MustAdd("NAME", values.Must(values.String()))
		cfg.MustAdd("COLOR", values.Must(values.String()))
		return cfg
	}

	ns, err := declare(
		sourceOf(map[string]string{"DJANGO_NAME": "from-env"}),
		settings.WithDotenv(settings.DotenvOptions{Path: path}),
	).Setup()
	require.NoError(t, err)
	name, _ := ns.Lookup("NAME")
	assert.Equal(t, "from-env", name)
	color, _ := ns.Lookup("COLOR")
	assert.Equal(t, "blue", color)
	loaded, _ := ns.Lookup(settings.DotenvLoadedSetting)
	assert.Equal(t, path, loaded)

	ns, err = declare(
		sourceOf(map[string]string{"DJANGO_NAME": "from-env"}),
		settings.WithDotenv(settings.DotenvOptions{Path: path, Override: true}),
	).Setup()
	require.NoError(t, err)
	name, _ = ns.Lookup("NAME")
	assert.Equal(t, "from-file", name)
}

func TestConfigurationMissingDotenv(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")

	cfg := settings.New("Default", sourceOf(nil), settings.WithDotenv(settings.DotenvOptions{Path: missing}))
	_, err := cfg.Setup()
	require.Error(t, err)
	assert.ErrorIs(t, err, envx.ErrDotenvNotFound)
	assert.Contains(t, err.Error(), "Couldn't read .env file with the path "+missing)

	cfg = settings.New("Optional", sourceOf(nil), settings.WithDotenv(settings.DotenvOptions{Path: missing, Optional: true}))
	ns, err := cfg.Setup()
	require.NoError(t, err)
	_, ok := ns.Lookup(settings.DotenvLoadedSetting)
	assert.False(t, ok)
}

func TestConfigurationBaseDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "base.yaml")
	writeFile(t, yamlPath, "TIME_ZONE: UTC\nUSE_I18N: true\nLOGGING:\n  version: 1\n")
	tomlPath := filepath.Join(dir, "site.toml")
	writeFile(t, tomlPath, "SITE_ID = 2\n")

	cfg := settings.New("Base",
		sourceOf(map[string]string{"DJANGO_TIME_ZONE": "Europe/Minsk"}),
		settings.WithBaseDefaults(map[string]any{"TIME_ZONE": "America/Chicago", "SITE_ID": 1, "APPEND_SLASH": true}),
		settings.WithBaseFiles(yamlPath, tomlPath),
		settings.WithBaseReader("extra.json", []byte(`{"ALLOWED_HOSTS": ["example.org"]}`)),
	)
	require.NoError(t, cfg.Set("USE_I18N", false))
	cfg.MustAdd("TIME_ZONE", values.Must(values.String()))

	ns, err := cfg.Setup()
	require.NoError(t, err)

	all, err := ns.All()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Minsk", all["TIME_ZONE"])
	assert.Equal(t, false, all["USE_I18N"])
	assert.Equal(t, true, all["APPEND_SLASH"])
	assert.EqualValues(t, 2, all["SITE_ID"])
	assert.Equal(t, []any{"example.org"}, all["ALLOWED_HOSTS"])
	assert.Contains(t, all["LOGGING"], "version")
}

func TestConfigurationBaseFileErrors(t *testing.T) {
	dir := t.TempDir()
	iniPath := filepath.Join(dir, "base.ini")
	writeFile(t, iniPath, "a=1")

	_, err := settings.New("Ini", sourceOf(nil), settings.WithBaseFiles(iniPath)).Setup()
	assert.ErrorIs(t, err, settings.ErrUnsupportedFormat)

	_, err = settings.New("Missing", sourceOf(nil), settings.WithBaseFiles(filepath.Join(dir, "nope.yaml"))).Setup()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigurationComputeAndHooks(t *testing.T) {
	var calls []string
	cfg := settings.New("Hooks",
		sourceOf(map[string]string{"DJANGO_HOST": "example.org"}),
		settings.WithPreSetup(func(c *settings.Configuration) error {
			calls = append(calls, "pre:"+c.Name())
			return nil
		}),
		settings.WithPostSetup(func(ns *settings.Namespace) error {
			url, _ := ns.Lookup("SITE_URL")
			calls = append(calls, "post:"+url.(string))
			return nil
		}),
	)
	cfg.MustAdd("HOST", values.Must(values.String()))
	require.NoError(t, cfg.Compute("SITE_URL", func(ns *settings.Namespace) (any, error) {
		host, err := ns.Get("HOST")
		if err != nil {
			return nil, err
		}
		return "https://" + host.(string), nil
	}))

	ns, err := cfg.Setup()
	require.NoError(t, err)
	site, _ := ns.Lookup("SITE_URL")
	assert.Equal(t, "https://example.org", site)
	assert.Equal(t, []string{"pre:Hooks", "post:https://example.org"}, calls)
}

func TestConfigurationHookFailure(t *testing.T) {
	failure := errors.New("boom")
	cfg := settings.New("Failing", sourceOf(nil), settings.WithPreSetup(func(*settings.Configuration) error {
		return failure
	}))

	_, err := cfg.Setup()
	assert.ErrorIs(t, err, failure)
	assert.EqualError(t, err, "Couldn't setup configuration 'Failing': boom")
}
