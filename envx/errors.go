package envx

import "fmt"

// ErrorCode defines string error
type ErrorCode string

// ErrorCode returns error message
func (e ErrorCode) Error() string {
	return string(e)
}

const (
	// ErrLookupFailed marks a source that could not be queried
	ErrLookupFailed = ErrorCode("lookup failed")
	// ErrDotenvNotFound is returned when a dotenv file does not exist
	ErrDotenvNotFound = ErrorCode("dotenv file not found")
	// ErrDotenvMalformed is returned when a dotenv file cannot be parsed
	ErrDotenvMalformed = ErrorCode("dotenv file is malformed")
)

// LookupError is produced by the resolver when a source fails to answer for a variable.
type LookupError struct {
	VarName string
	Source  string
	Cause   error
}

func (e *LookupError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("variable %q %s: %s", e.VarName, ErrLookupFailed, e.Cause)
	}
	return fmt.Sprintf("variable %q (%s) %s: %s", e.VarName, e.Source, ErrLookupFailed, e.Cause)
}

// Is reports ErrLookupFailed as a match.
func (e *LookupError) Is(target error) bool {
	return target == ErrLookupFailed
}

func (e *LookupError) Unwrap() error {
	return e.Cause
}
