// Package errors provides the structured error type used across envstage.
//
// Every failure surfaced by the staging core is a PlatformError carrying an
// ErrorCode, a classification, a human-readable message that names the
// offending path or parameter, and optional context metadata. The type stays
// compatible with the standard library (errors.Is, errors.As, errors.Unwrap),
// so callers can still match on the underlying io/fs sentinels:
//
//	err := util.StageForCache(src, dfs, dest, false)
//	switch errors.GetCode(err) {
//	case errors.CodeAlreadyExists:
//	    // re-run with overwrite
//	case errors.CodeIO:
//	    if errors.Is(err, fs.ErrPermission) { ... }
//	}
//
// # Error Codes
//
//   - CodeMissingArgument: a required parameter was not supplied
//   - CodeInvalidInput: an argument is present but unusable
//   - CodeNotFound: a staging source or plugin folder does not exist
//   - CodeAlreadyExists: a destination exists and overwrite is disabled
//   - CodeConflict: another installer holds the lock marker
//   - CodeIO: an underlying filesystem operation failed
//   - CodeInvalidConfig: configuration could not be loaded or validated
//
// Nothing in the staging core retries. All codes default to
// ClassificationPermanent; the classification is kept so an orchestrating
// job layer can apply its own policy through WithClassification.
package errors
