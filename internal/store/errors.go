package store

import "fmt"

// ErrorCode is the machine-readable class of a failure, surfaced verbatim
// in JSON error envelopes so agents can branch without parsing messages.
type ErrorCode string

const (
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	CodeInvalidValue  ErrorCode = "INVALID_VALUE"
	CodeNoDatabase    ErrorCode = "NO_DATABASE"
	CodeDBError       ErrorCode = "DB_ERROR"
	CodeParseError    ErrorCode = "PARSE_ERROR"
	CodeIOError       ErrorCode = "IO_ERROR"
)

// Error carries a code alongside the human-readable message. Every failure
// that crosses the store boundary is one of these.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing issue ID.
func NotFound(id int64) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("Issue %d not found", id)}
}

// CycleDetected rejects a dependency edge that would close a loop. The hint
// sketches the offending path.
func CycleDetected(hint string) *Error {
	return &Error{Code: CodeCycleDetected, Message: fmt.Sprintf("Cycle detected: %s", hint)}
}

// InvalidValue rejects input outside an enumerated set.
func InvalidValue(field, value, valid string) *Error {
	return &Error{
		Code:    CodeInvalidValue,
		Message: fmt.Sprintf("Invalid value for %s: '%s'. Valid: %s", field, value, valid),
	}
}

// NoDatabase means no .itr.db was found anywhere up the directory tree.
func NoDatabase() *Error {
	return &Error{Code: CodeNoDatabase, Message: "No .itr.db found. Run 'itr init' to create one."}
}

// DBError wraps a failure from the database layer.
func DBError(err error) *Error {
	return &Error{Code: CodeDBError, Message: fmt.Sprintf("Database error: %v", err), Err: err}
}

// ParseError wraps a JSON decoding failure.
func ParseError(err error) *Error {
	return &Error{Code: CodeParseError, Message: fmt.Sprintf("JSON parse error: %v", err), Err: err}
}

// IOError wraps a filesystem or stream failure.
func IOError(err error) *Error {
	return &Error{Code: CodeIOError, Message: fmt.Sprintf("IO error: %v", err), Err: err}
}
