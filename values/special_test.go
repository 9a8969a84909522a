package values_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmie/x/envconf/values"
)

func TestPathValue(t *testing.T) {
	dir := t.TempDir()

	v := values.Must(values.Path(values.Default(dir)))
	got, err := v.SetupIn(scopeOf(nil), "STATIC_ROOT")
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	file := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(file, []byte("a: 1"), 0o600))

	v = values.Must(values.Path())
	got, err = v.SetupIn(scopeOf(map[string]string{"DJANGO_STATIC_ROOT": file}), "STATIC_ROOT")
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestPathValueMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	v := values.Must(values.Path())
	_, err := v.SetupIn(scopeOf(map[string]string{"DJANGO_MEDIA_ROOT": missing}), "MEDIA_ROOT")
	var processing *values.ValueProcessingError
	require.ErrorAs(t, err, &processing)
	assert.EqualError(t, processing.Cause, `Path "`+missing+`" does not exist`)

	v = values.Must(values.Path(values.WithCheckExists(false)))
	got, err := v.SetupIn(scopeOf(map[string]string{"DJANGO_MEDIA_ROOT": missing}), "MEDIA_ROOT")
	require.NoError(t, err)
	assert.Equal(t, missing, got)
}

func TestPathValueExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	v := values.Must(values.Path(values.Default("~/cache"), values.WithCheckExists(false)))
	got, err := v.SetupIn(scopeOf(nil), "CACHE_DIR")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cache"), got)

	v = values.Must(values.Path(values.Default("relative/dir"), values.WithCheckExists(false)))
	got, err = v.SetupIn(scopeOf(nil), "CACHE_DIR")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestPathValueEmpty(t *testing.T) {
	v := values.Must(values.Path())
	got, err := v.SetupIn(scopeOf(nil), "LOG_DIR")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSecretValue(t *testing.T) {
	_, err := values.Secret(values.Default("hardcoded"))
	assert.ErrorIs(t, err, values.ErrDefaultNotAllowed)

	v := values.Must(values.Secret())
	assert.True(t, v.IsRequired())
	assert.True(t, v.Environ())

	_, err = v.SetupIn(scopeOf(nil), "SECRET_KEY")
	var retrieval *values.ValueRetrievalError
	assert.ErrorAs(t, err, &retrieval)

	_, err = v.SetupIn(scopeOf(map[string]string{"DJANGO_SECRET_KEY": ""}), "SECRET_KEY")
	var processing *values.ValueProcessingError
	require.ErrorAs(t, err, &processing)
	assert.EqualError(t, processing.Cause, `Secret value "SECRET_KEY" is not set`)

	got, err := v.SetupIn(scopeOf(map[string]string{"DJANGO_SECRET_KEY": "s3cr3t"}), "SECRET_KEY")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", got)
}

func TestSecretValueIgnoresEnvironOption(t *testing.T) {
	v := values.Must(values.Secret(values.WithEnviron(false)))
	got, err := v.SetupIn(scopeOf(map[string]string{"DJANGO_API_TOKEN": "token"}), "API_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "token", got)
}
