package values

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	trueValues  = []string{"yes", "y", "true", "1"}
	falseValues = []string{"no", "n", "false", "0", ""}
)

// ParseBool interprets the boolean vocabularies, ignoring case and surrounding spaces.
func ParseBool(raw string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range trueValues {
		if normalized == t {
			return true, nil
		}
	}
	for _, f := range falseValues {
		if normalized == f {
			return false, nil
		}
	}
	return false, fmt.Errorf("Cannot interpret boolean value %q", raw)
}

// ParseInt parses a base 10 integer.
func ParseInt(raw string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, cannotInterpret(raw)
	}
	return i, nil
}

// ParsePositiveInt parses a base 10 integer and rejects negative results.
func ParsePositiveInt(raw string) (int, error) {
	i, err := ParseInt(raw)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("Value %q is not positive: %w", raw, ErrNotPositive)
	}
	return i, nil
}

// ParseFloat parses a 64-bit float.
func ParseFloat(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, cannotInterpret(raw)
	}
	return f, nil
}

// ParseDecimal parses an arbitrary precision decimal.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, cannotInterpret(raw)
	}
	return d, nil
}

// ParseString returns raw unchanged.
func ParseString(raw string) (string, error) {
	return raw, nil
}

func cannotInterpret(raw string) error {
	return fmt.Errorf("Cannot interpret value %q", raw)
}

func init() {
	Casters.Register("string", Caster[string](ParseString))
	Casters.Register("bool", Caster[bool](ParseBool))
	Casters.Register("int", Caster[int](ParseInt))
	Casters.Register("positive_int", Caster[int](ParsePositiveInt))
	Casters.Register("float", Caster[float64](ParseFloat))
	Casters.Register("decimal", Caster[decimal.Decimal](ParseDecimal))
}

// String declares a plain string value. Validators attached with WithValidator
// also check the default.
func String(opts ...Option) (*Value[string], error) {
	return New[string](opts...)
}

// Boolean declares a boolean value. The default, when given, must be a bool.
func Boolean(opts ...Option) (*Value[bool], error) {
	const kind = "BooleanValue"
	o := newOptions(nil, opts)

	cast, err := casterOf[bool](kind, o, ParseBool)
	if err != nil {
		return nil, err
	}
	if cast, err = withValidators(kind, o, cast); err != nil {
		return nil, err
	}

	var def bool
	if o.def != nil {
		b, ok := o.def.(bool)
		if !ok {
			return nil, configError(kind, "%w: %#v", ErrNotBoolean, o.def)
		}
		def = b
	}
	return newValue(kind, o, cast, def)
}

// Integer declares an int value.
func Integer(opts ...Option) (*Value[int], error) {
	return scalar[int]("IntegerValue", ParseInt, opts)
}

// PositiveInteger declares an int value that must not be negative.
func PositiveInteger(opts ...Option) (*Value[int], error) {
	v, err := scalar[int]("PositiveIntegerValue", ParsePositiveInt, opts)
	if err != nil {
		return nil, err
	}
	if v.def < 0 {
		return nil, configError(v.kind, "%w %d: %w", ErrInvalidDefault, v.def, ErrNotPositive)
	}
	return v, nil
}

// Float declares a float64 value.
func Float(opts ...Option) (*Value[float64], error) {
	return scalar[float64]("FloatValue", ParseFloat, opts)
}

// Decimal declares a decimal value.
func Decimal(opts ...Option) (*Value[decimal.Decimal], error) {
	return scalar[decimal.Decimal]("DecimalValue", ParseDecimal, opts)
}

func scalar[T any](kind string, cast Caster[T], opts []Option) (*Value[T], error) {
	o := newOptions(nil, opts)
	cast, err := casterOf(kind, o, cast)
	if err != nil {
		return nil, err
	}
	if cast, err = withValidators(kind, o, cast); err != nil {
		return nil, err
	}
	def, err := defaultOf(kind, o.def, cast)
	if err != nil {
		return nil, err
	}
	return newValue(kind, o, cast, def)
}
