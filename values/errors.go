package values

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode defines string error
type ErrorCode string

// ErrorCode returns error message
func (e ErrorCode) Error() string {
	return string(e)
}

const (
	// ErrRequiredWithoutEnviron indicates a required value that is not read from the environment
	ErrRequiredWithoutEnviron = ErrorCode("value cannot be required without being read from the environment")
	// ErrInvalidDefault indicates a default that the value cannot hold
	ErrInvalidDefault = ErrorCode("invalid default value")
	// ErrCannotImport indicates an unknown caster, validator or backend reference
	ErrCannotImport = ErrorCode("cannot import")
	// ErrCannotUseCaster indicates a caster reference of the wrong type
	ErrCannotUseCaster = ErrorCode("cannot use caster")
	// ErrCannotUseValidator indicates a validator reference of the wrong type
	ErrCannotUseValidator = ErrorCode("cannot use validator")
	// ErrUnknownGenerator indicates an example generator that cannot be built
	ErrUnknownGenerator = ErrorCode("unknown example generator")
	// ErrDefaultNotAllowed indicates a default given to a value that forbids one
	ErrDefaultNotAllowed = ErrorCode("default value is not allowed")
	// ErrNotBoolean indicates a default that is not a boolean
	ErrNotBoolean = ErrorCode("default value is not a boolean value")
	// ErrNotPositive indicates a negative number where a positive one is expected
	ErrNotPositive = ErrorCode("value is not positive")
)

// ConfigurationError is returned when a value is declared incorrectly.
// It signals a programming mistake and is raised at construction time.
type ConfigurationError struct {
	Kind  string
	Cause error
}

func (e *ConfigurationError) Error() string {
	return e.Kind + ": " + e.Cause.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

func configError(kind string, format string, args ...any) error {
	return &ConfigurationError{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// Explainer is implemented by errors that can describe how to fix them.
type Explainer interface {
	ExplanationLines() []string
}

// ValueInfo describes the value an error is about.
type ValueInfo struct {
	Name          string
	EnvKey        string
	Kind          string
	Environ       bool
	HelpText      string
	HelpReference string
	Example       string
}

func (i ValueInfo) explanationLines() []string {
	var lines []string
	if i.HelpText != "" {
		lines = append(lines, "Help: "+i.HelpText)
	}
	if i.HelpReference != "" {
		lines = append(lines, "Reference: "+i.HelpReference)
	}
	if i.Environ {
		lines = append(lines, fmt.Sprintf(
			"%s is taken from the environment variable %s as a %s", i.Name, i.EnvKey, i.Kind,
		))
	}
	if i.Example != "" {
		lines = append(lines, fmt.Sprintf("Example value: '%s'", i.Example))
	}
	return lines
}

// ValueRetrievalError is returned when a required environment variable is absent.
type ValueRetrievalError struct {
	ValueInfo
}

func (e *ValueRetrievalError) Error() string {
	return fmt.Sprintf("Value of %s could not be retrieved from environment", e.Name)
}

// ExplanationLines returns hints for the person configuring the application.
func (e *ValueRetrievalError) ExplanationLines() []string {
	return e.explanationLines()
}

// ValueProcessingError is returned when a present value cannot be converted or validated.
type ValueProcessingError struct {
	ValueInfo
	Raw   string
	Cause error
}

func (e *ValueProcessingError) Error() string {
	return fmt.Sprintf("%s was given an invalid value: %s", e.Name, e.Cause)
}

func (e *ValueProcessingError) Unwrap() error {
	return e.Cause
}

// ExplanationLines returns hints for the person configuring the application.
func (e *ValueProcessingError) ExplanationLines() []string {
	return append(e.explanationLines(), fmt.Sprintf("'%s' was received but that is invalid", e.Raw))
}

// SetupError aggregates the failures of a whole configuration.
type SetupError struct {
	Message string
	Errors  []error
}

// Error renders the message followed by one bullet per failure and its explanation.
func (e *SetupError) Error() string {
	sb := new(strings.Builder)
	sb.WriteString(e.Message)
	for _, err := range e.Errors {
		sb.WriteString("\n    * ")
		sb.WriteString(err.Error())
		var ex Explainer
		if !errors.As(err, &ex) {
			continue
		}
		for _, line := range ex.ExplanationLines() {
			sb.WriteString("\n        - ")
			sb.WriteString(line)
		}
	}
	return sb.String()
}

func (e *SetupError) Unwrap() []error {
	return e.Errors
}

// IsValueError reports whether err is a retrieval or processing failure.
func IsValueError(err error) bool {
	var retrieval *ValueRetrievalError
	var processing *ValueProcessingError
	return errors.As(err, &retrieval) || errors.As(err, &processing)
}
