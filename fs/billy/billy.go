package billy

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jmgilman/envstage/fs/core"
)

// LocalFS is a disk-backed core.FS.
type LocalFS struct {
	filesystem
	root string
}

// MemoryFS is an in-memory core.FS.
type MemoryFS struct {
	filesystem
}

// Option configures filesystem creation.
type Option func(*config)

type config struct {
	root string
}

// WithRoot roots a LocalFS at dir instead of "/". It has no effect on
// MemoryFS.
func WithRoot(dir string) Option {
	return func(c *config) {
		c.root = dir
	}
}

func newConfig(opts []Option) config {
	cfg := config{root: "/"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewLocal creates a filesystem backed by the host disk.
func NewLocal(opts ...Option) *LocalFS {
	cfg := newConfig(opts)
	return &LocalFS{filesystem: filesystem{bfs: osfs.New(cfg.root)}, root: cfg.root}
}

// NewMemory creates an empty in-memory filesystem.
func NewMemory(_ ...Option) *MemoryFS {
	return &MemoryFS{filesystem{bfs: memfs.New()}}
}

// Type returns FSTypeLocal.
func (lfs *LocalFS) Type() core.FSType {
	return core.FSTypeLocal
}

// Chroot returns a LocalFS scoped to dir.
func (lfs *LocalFS) Chroot(dir string) (core.FS, error) {
	sub, err := lfs.chroot(dir)
	if err != nil {
		return nil, err
	}
	return &LocalFS{filesystem: sub, root: filepath.Join(lfs.root, filepath.FromSlash(normalize(dir)))}, nil
}

// hostPath maps name to its location on the host disk.
func (lfs *LocalFS) hostPath(name string) string {
	return filepath.Join(lfs.root, filepath.FromSlash(normalize(name)))
}

// Chmod changes the permission bits of the named file on disk.
func (lfs *LocalFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(lfs.hostPath(name), mode)
}

// Chtimes changes the access and modification times of the named file.
func (lfs *LocalFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(lfs.hostPath(name), atime, mtime)
}

// Type returns FSTypeMemory.
func (mfs *MemoryFS) Type() core.FSType {
	return core.FSTypeMemory
}

// Chroot returns a MemoryFS scoped to dir.
func (mfs *MemoryFS) Chroot(dir string) (core.FS, error) {
	sub, err := mfs.chroot(dir)
	if err != nil {
		return nil, err
	}
	return &MemoryFS{sub}, nil
}

// filesystem holds the operations shared by LocalFS and MemoryFS.
type filesystem struct {
	bfs billy.Filesystem
}

// Unwrap returns the underlying billy.Filesystem.
func (b filesystem) Unwrap() billy.Filesystem {
	return b.bfs
}

// normalize converts paths to clean, slash-separated form.
func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// dirEntry adapts fs.FileInfo to fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

func (b filesystem) wrap(f billy.File, name string) *File {
	return &File{File: f, stat: b.bfs.Stat, name: name}
}

// Open opens the named file for reading.
func (b filesystem) Open(name string) (fs.File, error) {
	name = normalize(name)
	f, err := b.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return b.wrap(f, name), nil
}

// Stat returns file metadata for the named file.
func (b filesystem) Stat(name string) (fs.FileInfo, error) {
	return b.bfs.Stat(normalize(name))
}

// ReadDir returns the entries of a directory sorted by name.
func (b filesystem) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := b.bfs.ReadDir(normalize(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	return entries, nil
}

// ReadFile reads the named file and returns its contents.
func (b filesystem) ReadFile(name string) ([]byte, error) {
	f, err := b.bfs.Open(normalize(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists reports whether the named file or directory exists.
func (b filesystem) Exists(name string) (bool, error) {
	_, err := b.bfs.Stat(normalize(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file for writing.
func (b filesystem) Create(name string) (core.File, error) {
	name = normalize(name)
	f, err := b.bfs.Create(name)
	if err != nil {
		return nil, err
	}
	return b.wrap(f, name), nil
}

// OpenFile opens a file with the specified flags and permissions.
func (b filesystem) OpenFile(name string, flag int, perm fs.FileMode) (core.File, error) {
	name = normalize(name)
	f, err := b.bfs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return b.wrap(f, name), nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (b filesystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return util.WriteFile(b.bfs, normalize(name), data, perm)
}

// Mkdir creates a single directory. The parent must already exist.
func (b filesystem) Mkdir(name string, perm fs.FileMode) error {
	name = normalize(name)
	if _, err := b.bfs.Stat(name); err == nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if parent := filepath.Dir(name); parent != "." && parent != "/" {
		if _, err := b.bfs.Stat(parent); err != nil {
			return err
		}
	}
	return b.bfs.MkdirAll(name, perm)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (b filesystem) MkdirAll(path string, perm fs.FileMode) error {
	return b.bfs.MkdirAll(normalize(path), perm)
}

// Remove removes the named file or empty directory.
func (b filesystem) Remove(name string) error {
	return b.bfs.Remove(normalize(name))
}

// RemoveAll removes path and any children it contains.
func (b filesystem) RemoveAll(path string) error {
	err := util.RemoveAll(b.bfs, normalize(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Rename renames (moves) oldpath to newpath.
func (b filesystem) Rename(oldpath, newpath string) error {
	return b.bfs.Rename(normalize(oldpath), normalize(newpath))
}

// Walk visits root and every path below it in lexical order.
func (b filesystem) Walk(root string, walkFn fs.WalkDirFunc) error {
	root = normalize(root)
	info, err := b.bfs.Stat(root)
	if err != nil {
		err = walkFn(root, nil, err)
	} else {
		err = b.walk(root, &dirEntry{info: info}, walkFn)
	}
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (b filesystem) walk(path string, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	if err := walkFn(path, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, fs.SkipDir) && d.IsDir() {
			err = nil
		}
		return err
	}

	entries, err := b.bfs.ReadDir(path)
	if err != nil {
		if err = walkFn(path, d, err); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		child := normalize(filepath.Join(path, entry.Name()))
		if err := b.walk(child, &dirEntry{info: entry}, walkFn); err != nil {
			if errors.Is(err, fs.SkipDir) {
				continue
			}
			return err
		}
	}
	return nil
}

func (b filesystem) chroot(dir string) (filesystem, error) {
	sub, err := b.bfs.Chroot(normalize(dir))
	if err != nil {
		return filesystem{}, err
	}
	return filesystem{bfs: sub}, nil
}

// Lstat returns file info without following symbolic links.
func (b filesystem) Lstat(name string) (fs.FileInfo, error) {
	return b.bfs.Lstat(normalize(name))
}

// Chmod changes the permission bits of the named file. It returns
// core.ErrUnsupported when the backend has no mode support, which is the
// case for memfs.
func (b filesystem) Chmod(name string, mode fs.FileMode) error {
	ch, ok := b.bfs.(billy.Change)
	if !ok {
		return core.ErrUnsupported
	}
	return ch.Chmod(normalize(name), mode)
}

// Chtimes changes the access and modification times of the named file.
func (b filesystem) Chtimes(name string, atime, mtime time.Time) error {
	ch, ok := b.bfs.(billy.Change)
	if !ok {
		return core.ErrUnsupported
	}
	return ch.Chtimes(normalize(name), atime, mtime)
}

// TempFile creates a temporary file in dir whose name starts with pattern.
func (b filesystem) TempFile(dir, pattern string) (core.File, error) {
	f, err := b.bfs.TempFile(dir, pattern)
	if err != nil {
		return nil, err
	}
	return b.wrap(f, normalize(f.Name())), nil
}

// TempDir creates a temporary directory in dir whose name starts with
// pattern. An empty dir selects the backend's default temporary directory.
func (b filesystem) TempDir(dir, pattern string) (string, error) {
	name, err := util.TempDir(b.bfs, dir, pattern)
	if err != nil {
		return "", err
	}
	return normalize(name), nil
}

// Compile-time interface checks.
var (
	_ core.FS         = (*LocalFS)(nil)
	_ core.FS         = (*MemoryFS)(nil)
	_ core.MetadataFS = (*LocalFS)(nil)
	_ core.MetadataFS = (*MemoryFS)(nil)
	_ core.TempFS     = (*LocalFS)(nil)
	_ core.TempFS     = (*MemoryFS)(nil)
)
