package errors

import (
	stderrors "errors"
)

// Is forwards to the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// find returns the outermost PlatformError in err's chain.
func find(err error) (PlatformError, bool) {
	if err == nil {
		return nil, false
	}
	var pe PlatformError
	ok := stderrors.As(err, &pe)
	return pe, ok
}

// GetCode returns the code of the outermost PlatformError in err's chain,
// or CodeUnknown when there is none.
//
//	if errors.GetCode(err) == errors.CodeConflict {
//		// another installer holds the lock
//	}
func GetCode(err error) ErrorCode {
	if pe, ok := find(err); ok {
		return pe.Code()
	}
	return CodeUnknown
}

// HasCode reports whether GetCode(err) is code. A nil err has no code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// GetClassification returns the classification of the outermost
// PlatformError, defaulting to ClassificationPermanent.
func GetClassification(err error) ErrorClassification {
	if pe, ok := find(err); ok {
		return pe.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable reports whether err is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
