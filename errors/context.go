package errors

import "maps"

// WithContext returns err with key set in its context. Errors from outside
// this package become CodeUnknown PlatformErrors wrapping the original. A
// nil err stays nil.
//
//	err = errors.WithContext(err, "lock", distcache.LockFileAt(root))
func WithContext(err error, key string, value interface{}) PlatformError {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap is WithContext for several keys at once. Keys in ctx
// replace existing keys of the same name.
func WithContextMap(err error, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}
	pe := asPlatformError(err)
	if pe.context == nil {
		pe.context = make(map[string]interface{}, len(ctx))
	}
	maps.Copy(pe.context, ctx)
	return pe
}

// WithClassification returns err reclassified as c. Errors from outside
// this package are converted as in WithContext.
func WithClassification(err error, c ErrorClassification) PlatformError {
	if err == nil {
		return nil
	}
	pe := asPlatformError(err)
	pe.classification = c
	return pe
}
