package core

import (
	"io"
	"io/fs"
	"time"
)

// FSType identifies the backing store of a filesystem.
type FSType int

const (
	// FSTypeUnknown indicates the filesystem type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates a disk-backed filesystem.
	FSTypeLocal
	// FSTypeMemory indicates an in-memory filesystem.
	FSTypeMemory
	// FSTypeRemote indicates remote storage such as an object store.
	FSTypeRemote
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	case FSTypeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// FS is the filesystem every provider implements. It embeds fs.FS so
// providers can be handed to io/fs helpers directly.
type FS interface {
	fs.FS
	ReadFS
	WriteFS
	ManageFS
	WalkFS
	ChrootFS

	// Type returns the underlying filesystem type.
	Type() FSType
}

// ReadFS defines read-only operations.
type ReadFS interface {
	// Open opens the named file for reading.
	Open(name string) (fs.File, error)

	// Stat returns metadata for the named file or directory.
	// Failures are reported as *fs.PathError.
	Stat(name string) (fs.FileInfo, error)

	// ReadDir returns the entries of a directory sorted by name.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the whole named file.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named path exists. A false result with a
	// non-nil error means existence could not be determined.
	Exists(name string) (bool, error)
}

// WriteFS defines write operations.
type WriteFS interface {
	// Create creates or truncates the named file.
	Create(name string) (File, error)

	// OpenFile opens a file with the given os.O_* flags. Flag support varies
	// by provider.
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)

	// WriteFile writes data to the named file, truncating it first.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Mkdir creates a single directory. It fails with fs.ErrExist when the
	// directory is already present.
	Mkdir(name string, perm fs.FileMode) error

	// MkdirAll creates a directory and any missing parents. An existing
	// directory is not an error.
	MkdirAll(path string, perm fs.FileMode) error
}

// ManageFS defines removal and rename operations.
type ManageFS interface {
	// Remove removes a file or an empty directory.
	Remove(name string) error

	// RemoveAll removes path and its children. A missing path is not an error.
	RemoveAll(path string) error

	// Rename moves oldpath to newpath. Object-store providers implement this
	// as copy plus delete.
	Rename(oldpath, newpath string) error
}

// WalkFS defines directory tree traversal.
type WalkFS interface {
	// Walk visits root and every path below it in lexical order, following
	// the fs.WalkDirFunc contract including fs.SkipDir and fs.SkipAll.
	Walk(root string, walkFn fs.WalkDirFunc) error
}

// ChrootFS defines scoped filesystem views.
type ChrootFS interface {
	// Chroot returns a filesystem whose root is dir.
	Chroot(dir string) (FS, error)
}

// File is an open file handle that can also be written.
type File interface {
	fs.File
	io.Writer

	// Name returns the name the file was opened with.
	Name() string
}

// MetadataFS is implemented by providers that keep POSIX-style metadata.
//
//	if mfs, ok := fsys.(core.MetadataFS); ok {
//	    err := mfs.Chmod("lib/a.jar", 0o755)
//	}
type MetadataFS interface {
	// Lstat returns file info without following symbolic links.
	Lstat(name string) (fs.FileInfo, error)

	// Chmod changes the permission bits of the named file.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes changes the access and modification times of the named file.
	Chtimes(name string, atime, mtime time.Time) error
}

// TempFS is implemented by providers that can allocate temporary paths.
// An empty dir selects the provider's default temporary directory.
type TempFS interface {
	// TempFile creates and opens a new file named after pattern in dir.
	TempFile(dir, pattern string) (File, error)

	// TempDir creates a new directory named after pattern in dir and returns
	// its path. The caller removes it.
	TempDir(dir, pattern string) (string, error)
}
