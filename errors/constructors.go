package errors

import "fmt"

// New creates a new PlatformError with the given code and message.
//
// Example:
//
//	err := errors.New(errors.CodeInvalidInput, "destination already exists")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:           code,
		classification: code.classification(),
		message:        message,
	}
}

// Newf creates a new PlatformError with a formatted message.
//
// Example:
//
//	err := errors.Newf(errors.CodeNotFound, "source does not exist: %s", src)
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context while preserving the original error.
// The wrapped error is accessible via Unwrap() and compatible with errors.Is and errors.As.
// If err is a PlatformError its classification is preserved.
//
// Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) PlatformError {
	if err == nil {
		return nil
	}

	classification := code.classification()
	var platformErr PlatformError
	if As(err, &platformErr) {
		classification = platformErr.Classification()
	}

	return &platformError{
		code:           code,
		classification: classification,
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps an error with a formatted message.
//
// Returns nil if err is nil.
//
// Example:
//
//	if err := dfs.SetReplication(p, 3); err != nil {
//	    return errors.Wrapf(err, errors.CodeIO, "failed to set replication on %s", p)
//	}
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// MissingArgument reports a required parameter that was not supplied. The
// message reads "<parameter> is required" and the parameter name is attached
// as context under "parameter".
func MissingArgument(parameter string) PlatformError {
	return &platformError{
		code:           CodeMissingArgument,
		classification: CodeMissingArgument.classification(),
		message:        parameter + " is required",
		context:        map[string]interface{}{"parameter": parameter},
	}
}

// IO wraps a failed filesystem operation on path. The path is attached as
// context under "path". Returns nil if err is nil.
func IO(err error, op, path string) PlatformError {
	if err == nil {
		return nil
	}
	return &platformError{
		code:           CodeIO,
		classification: CodeIO.classification(),
		message:        fmt.Sprintf("%s %s", op, path),
		context:        map[string]interface{}{"path": path},
		cause:          err,
	}
}
