package settings

// ErrorCode defines string error
type ErrorCode string

// ErrorCode returns error message
func (e ErrorCode) Error() string {
	return string(e)
}

const (
	// ErrInvalidName indicates a setting name that is not upper case
	ErrInvalidName = ErrorCode("setting names must be upper case")
	// ErrDuplicateName indicates a setting declared twice
	ErrDuplicateName = ErrorCode("setting is already declared")
	// ErrUnknownSetting is returned by Namespace.Get for names that were never published
	ErrUnknownSetting = ErrorCode("unknown setting")
	// ErrUnsupportedFormat is returned for base files with an unknown extension
	ErrUnsupportedFormat = ErrorCode("unsupported config format")
	// ErrConfigurationUndefined is returned by Registry.Select when the selector variable is not set
	ErrConfigurationUndefined = ErrorCode("configuration is undefined")
	// ErrConfigurationNotFound is returned by Registry.Select for unknown configuration names
	ErrConfigurationNotFound = ErrorCode("configuration not found")
)

// SelectError is returned when a configuration cannot be selected.
type SelectError struct {
	Code    ErrorCode
	Message string
}

func (e *SelectError) Error() string {
	return e.Message
}

func (e *SelectError) Unwrap() error {
	return e.Code
}
