// Package errors defines the stable error codes shared by the analysis
// pipeline and the CLI. A failed analysis is always distinguishable from
// an empty one: empty projects are a successful result, failures carry a
// code.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidInput indicates the project root is missing or not a directory
	InvalidInput ErrorCode = "INVALID_INPUT"
	// UnparsableFile indicates a source file with syntax errors
	UnparsableFile ErrorCode = "UNPARSABLE_FILE"
	// UnreadableFile indicates a source file that could not be read or decoded
	UnreadableFile ErrorCode = "UNREADABLE_FILE"
	// AnalysisFailed indicates the pipeline failed; no partial result exists
	AnalysisFailed ErrorCode = "ANALYSIS_FAILED"
	// ExportFailed indicates result export could not be written
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// ConfigInvalid indicates a malformed or out-of-range configuration
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// StorageFailed indicates the run-history database could not be used
	StorageFailed ErrorCode = "STORAGE_FAILED"
)

// Error is a coded error with an optional cause and details payload.
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a coded error without a cause.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error around an underlying cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf extracts the error code from err, walking the wrap chain.
// Returns an empty code for nil and for errors created elsewhere.
func CodeOf(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// SuggestedFixes maps error codes to operator hints printed by the CLI.
var SuggestedFixes = map[ErrorCode]string{
	InvalidInput:  "check that the project path exists and is a directory",
	ConfigInvalid: "inspect .pycm/config.json or the [tool.pycm] table in pyproject.toml",
	ExportFailed:  "pass --export-overwrite to replace an existing export file",
	StorageFailed: "remove .pycm/pycm.db to let pycm recreate the run history",
}

// FixFor returns the suggested fix for an error code, if any.
func FixFor(code ErrorCode) (string, bool) {
	fix, ok := SuggestedFixes[code]
	return fix, ok
}
