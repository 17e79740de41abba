package errors

// ErrorCode names the failure category of a PlatformError. Codes are the
// stable part of an error: callers branch on them and the CLI prints them.
type ErrorCode string

// Argument and input failures.
const (
	// CodeMissingArgument is returned when a required parameter is empty or
	// nil. The parameter name is stored under the "parameter" context key.
	CodeMissingArgument ErrorCode = "MISSING_ARGUMENT"
	// CodeInvalidInput covers malformed archives, unsafe entry names and
	// unusable plugin lists.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Filesystem state failures.
const (
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// CodeConflict reports a lock marker held by another installation.
	CodeConflict ErrorCode = "CONFLICT"
	// CodeIO wraps a failed read, write, permission or replication call.
	CodeIO ErrorCode = "IO_FAILURE"
)

// Setup and fallback codes.
const (
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	// CodeUnknown is reported for errors that never passed through this
	// package.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorClassification tells a caller whether repeating the operation can
// succeed.
type ErrorClassification string

const (
	ClassificationRetryable ErrorClassification = "RETRYABLE"
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable reports whether c is ClassificationRetryable.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// classification returns the classification a new error with code c
// starts with. Every code starts out permanent.
func (c ErrorCode) classification() ErrorClassification {
	return ClassificationPermanent
}
