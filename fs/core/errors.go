package core

import (
	"errors"
	"io/fs"
)

// Sentinel errors returned by providers. The first four alias io/fs so
// errors.Is works across providers and the standard library.
var (
	ErrNotExist   = fs.ErrNotExist
	ErrExist      = fs.ErrExist
	ErrPermission = fs.ErrPermission
	ErrClosed     = fs.ErrClosed

	// ErrUnsupported is returned for operations a provider cannot perform,
	// such as Chmod on an object store.
	ErrUnsupported = errors.New("operation not supported")
)
