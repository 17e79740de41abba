// Package errs maps object store responses onto io/fs errors so callers can
// test them with errors.Is(err, fs.ErrNotExist) like any other filesystem.
package errs

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/minio/minio-go/v7"
)

var sentinels = map[string]error{
	"NoSuchKey":    fs.ErrNotExist,
	"NoSuchBucket": fs.ErrNotExist,
	"AccessDenied": fs.ErrPermission,
}

// Translate returns the io/fs sentinel matching a MinIO error response.
// Errors without one are prefixed with "minio:"; errors that already match
// an io/fs sentinel, and nil, pass through.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return err
	}
	if sentinel, ok := sentinels[minio.ToErrorResponse(err).Code]; ok {
		return sentinel
	}
	return fmt.Errorf("minio: %w", err)
}

// Op is PathError over Translate(err).
func Op(op, path string, err error) error {
	return PathError(op, path, Translate(err))
}

// PathError returns err as a *fs.PathError, or nil for a nil err.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// PathErrorf is PathError with a formatted cause.
func PathErrorf(op, path, format string, args ...interface{}) error {
	return PathError(op, path, fmt.Errorf(format, args...))
}
