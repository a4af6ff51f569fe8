package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeParse is a malformed or missing input file. The file is
	// skipped and the run continues with the remaining sources.
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeFetch is an unavailable app, malformed API response, or a
	// blocked request. The identifier is skipped and the run continues.
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeAuth is SteamDB blocking access with no valid cookies.
	// Surfaced to the operator; a strategy switch is required.
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeFilesystem is a failure to create the output directory or
	// file. Fatal, aborts the run.
	ErrorTypeFilesystem ErrorType = "filesystem"
)

// Error represents a categorized error with optional HTTP status code
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// NewParseError creates a parse error for a broken input file
func NewParseError(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeParse, Message: fmt.Sprintf(format, args...)}
}

// NewFetchError creates a fetch error for a skippable identifier failure
func NewFetchError(code int, format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeFetch, Message: fmt.Sprintf(format, args...), Code: code}
}

// NewAuthError creates an auth error for blocked SteamDB access
func NewAuthError(code int, format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeAuth, Message: fmt.Sprintf(format, args...), Code: code}
}

// NewFilesystemError creates a fatal filesystem error
func NewFilesystemError(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeFilesystem, Message: fmt.Sprintf(format, args...)}
}

// IsType reports whether err (or any error it wraps) is an Error of the
// given type.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsParse reports whether err is a parse error
func IsParse(err error) bool { return IsType(err, ErrorTypeParse) }

// IsFetch reports whether err is a fetch error
func IsFetch(err error) bool { return IsType(err, ErrorTypeFetch) }

// IsAuth reports whether err is an auth error
func IsAuth(err error) bool { return IsType(err, ErrorTypeAuth) }

// IsFilesystem reports whether err is a filesystem error
func IsFilesystem(err error) bool { return IsType(err, ErrorTypeFilesystem) }

// IsFatal reports whether err should abort the whole run. Only filesystem
// errors are fatal; identifier and file level failures are isolated.
func IsFatal(err error) bool { return IsFilesystem(err) }
