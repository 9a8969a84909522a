package values_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmie/x/envconf/values"
)

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"yes", "Y", "TRUE", "1", " true ", "\tYes\n"} {
		got, err := values.ParseBool(raw)
		require.NoError(t, err, raw)
		assert.True(t, got, raw)
	}
	for _, raw := range []string{"no", "N", "False", "0", "", "  ", " NO "} {
		got, err := values.ParseBool(raw)
		require.NoError(t, err, raw)
		assert.False(t, got, raw)
	}
	for _, raw := range []string{"nope", "2", "on", "t"} {
		_, err := values.ParseBool(raw)
		assert.EqualError(t, err, `Cannot interpret boolean value "`+raw+`"`)
	}
}

func TestBooleanValue(t *testing.T) {
	v := values.Must(values.Boolean(values.Default(true)))
	got, err := v.SetupIn(scopeOf(nil), "DEBUG")
	require.NoError(t, err)
	assert.True(t, got)

	v = values.Must(values.Boolean())
	assert.False(t, v.DefaultValue())

	got, err = v.SetupIn(scopeOf(map[string]string{"DJANGO_DEBUG": " Yes "}), "DEBUG")
	require.NoError(t, err)
	assert.True(t, got)

	v = values.Must(values.Boolean())
	_, err = v.SetupIn(scopeOf(map[string]string{"DJANGO_DEBUG": "maybe"}), "DEBUG")
	var processing *values.ValueProcessingError
	assert.ErrorAs(t, err, &processing)
}

func TestBooleanRejectsNonBooleanDefault(t *testing.T) {
	for _, def := range []any{"true", 1, 0.0} {
		_, err := values.Boolean(values.Default(def))
		assert.ErrorIs(t, err, values.ErrNotBoolean)
	}
}

func TestBooleanValidatorsAndCaster(t *testing.T) {
	_, err := values.Boolean(values.WithValidator("no-such-validator"))
	assert.ErrorIs(t, err, values.ErrCannotImport)
	var cfgErr *values.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "BooleanValue", cfgErr.Kind)

	onlyWords := values.Validator(func(raw string) error {
		if raw == "1" || raw == "0" {
			return errors.New("use yes or no")
		}
		return nil
	})
	v := values.Must(values.Boolean(values.WithValidator(onlyWords)))
	got, err := v.ToGo("yes")
	require.NoError(t, err)
	assert.True(t, got)
	_, err = v.ToGo("1")
	assert.EqualError(t, err, "use yes or no")

	strict := func(raw string) (bool, error) {
		return raw == "on", nil
	}
	v = values.Must(values.Boolean(values.WithCaster(strict)))
	got, err = v.ToGo("on")
	require.NoError(t, err)
	assert.True(t, got)
	got, err = v.ToGo("yes")
	require.NoError(t, err)
	assert.False(t, got)

	_, err = values.Boolean(values.WithCaster("int"))
	assert.ErrorIs(t, err, values.ErrCannotUseCaster)
}

func TestIntegerValue(t *testing.T) {
	v := values.Must(values.Integer(values.Default(2)))
	got, err := v.SetupIn(scopeOf(nil), "WORKERS")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	v = values.Must(values.Integer(values.Default(2)))
	got, err = v.SetupIn(scopeOf(map[string]string{"DJANGO_WORKERS": " 12 "}), "WORKERS")
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	v = values.Must(values.Integer(values.Default(2)))
	_, err = v.SetupIn(scopeOf(map[string]string{"DJANGO_WORKERS": "1.5"}), "WORKERS")
	var processing *values.ValueProcessingError
	assert.ErrorAs(t, err, &processing)

	_, err = values.Integer(values.Default("x"))
	assert.ErrorIs(t, err, values.ErrInvalidDefault)
}

func TestPositiveIntegerValue(t *testing.T) {
	v := values.Must(values.PositiveInteger())
	got, err := v.SetupIn(scopeOf(map[string]string{"DJANGO_PORT": "0"}), "PORT")
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	v = values.Must(values.PositiveInteger())
	_, err = v.SetupIn(scopeOf(map[string]string{"DJANGO_PORT": "-1"}), "PORT")
	require.Error(t, err)
	assert.ErrorIs(t, err, values.ErrNotPositive)
	assert.ErrorContains(t, err, `Value "-1" is not positive`)

	_, err = values.PositiveInteger(values.Default(-5))
	assert.ErrorIs(t, err, values.ErrNotPositive)
}

func TestFloatValue(t *testing.T) {
	v := values.Must(values.Float(values.Default(0.5)))
	got, err := v.SetupIn(scopeOf(map[string]string{"DJANGO_RATIO": "1.25"}), "RATIO")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, got, 1e-9)

	_, err = values.ParseFloat("abc")
	assert.EqualError(t, err, `Cannot interpret value "abc"`)
}

func TestDecimalValue(t *testing.T) {
	v := values.Must(values.Decimal(values.Default("0.10")))
	assert.True(t, decimal.RequireFromString("0.1").Equal(v.DefaultValue()))

	got, err := v.SetupIn(scopeOf(map[string]string{"DJANGO_FEE": "2.345"}), "FEE")
	require.NoError(t, err)
	assert.Equal(t, "2.345", got.String())

	v = values.Must(values.Decimal())
	_, err = v.SetupIn(scopeOf(map[string]string{"DJANGO_FEE": "two"}), "FEE")
	assert.ErrorContains(t, err, `Cannot interpret value "two"`)
}

func TestCastersRegistry(t *testing.T) {
	for _, name := range []string{"string", "bool", "int", "positive_int", "float", "decimal", "dict", "dburl", "cidr"} {
		assert.True(t, values.Casters.Has(name), name)
	}
	names := values.Casters.Names()
	assert.IsIncreasing(t, names)
}
