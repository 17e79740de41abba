// Package localdfs turns any core.FS into a core.DistributedFS.
//
// It plays the role a single-node cluster plays for a real distributed
// filesystem: paths live on the wrapped filesystem while permission bits and
// replication factors are tracked alongside them. Permission changes are
// also forwarded to the wrapped filesystem when it implements
// core.MetadataFS, so staged trees on disk end up with the requested modes.
//
//	dfs := localdfs.New(billy.NewLocal(), localdfs.WithDefaultReplication(1))
//	err := dfs.SetReplication("/opt/env/lib/a.jar", 10)
package localdfs

import (
	"errors"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/jmgilman/envstage/fs/core"
)

// FS is a core.DistributedFS backed by another core.FS.
type FS struct {
	core.FS

	mu                 sync.RWMutex
	perms              map[string]fs.FileMode
	replication        map[string]int16
	defaultReplication int16
}

// Option configures an FS.
type Option func(*FS)

// WithDefaultReplication sets the factor reported for paths that never had
// one set. The default is 1.
func WithDefaultReplication(n int16) Option {
	return func(f *FS) {
		f.defaultReplication = n
	}
}

// New wraps base.
func New(base core.FS, opts ...Option) *FS {
	f := &FS{
		FS:                 base,
		perms:              make(map[string]fs.FileMode),
		replication:        make(map[string]int16),
		defaultReplication: 1,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func key(name string) string {
	return path.Clean("/" + name)
}

// Stat returns file info with any permission set through SetPermission
// applied to the mode.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	info, err := f.FS.Stat(name)
	if err != nil {
		return nil, err
	}
	return f.withPerm(name, info), nil
}

// ReadDir lists name. Entry Info reports permissions set through
// SetPermission.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := f.FS.ReadDir(name)
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		entries[i] = &dirEntry{DirEntry: e, fs: f, name: path.Join(name, e.Name())}
	}
	return entries, nil
}

// Walk walks the tree at root. Entries passed to walkFn report permissions
// set through SetPermission.
func (f *FS) Walk(root string, walkFn fs.WalkDirFunc) error {
	return f.FS.Walk(root, func(p string, d fs.DirEntry, err error) error {
		if d != nil {
			d = &dirEntry{DirEntry: d, fs: f, name: p}
		}
		return walkFn(p, d, err)
	})
}

func (f *FS) withPerm(name string, info fs.FileInfo) fs.FileInfo {
	f.mu.RLock()
	perm, ok := f.perms[key(name)]
	f.mu.RUnlock()
	if !ok {
		return info
	}
	return &fileInfo{FileInfo: info, mode: info.Mode()&^fs.ModePerm | perm}
}

// SetPermission sets the permission bits of name.
func (f *FS) SetPermission(name string, perm fs.FileMode) error {
	if _, err := f.FS.Stat(name); err != nil {
		return err
	}

	if mfs, ok := f.FS.(core.MetadataFS); ok {
		if err := mfs.Chmod(name, perm.Perm()); err != nil && !errors.Is(err, core.ErrUnsupported) {
			return err
		}
	}

	f.mu.Lock()
	f.perms[key(name)] = perm.Perm()
	f.mu.Unlock()
	return nil
}

// SetReplication records the replication factor of name.
func (f *FS) SetReplication(name string, replication int16) error {
	if replication < 1 {
		return &fs.PathError{Op: "setreplication", Path: name, Err: fs.ErrInvalid}
	}
	if _, err := f.FS.Stat(name); err != nil {
		return err
	}

	f.mu.Lock()
	f.replication[key(name)] = replication
	f.mu.Unlock()
	return nil
}

// Replication returns the replication factor of name.
func (f *FS) Replication(name string) (int16, error) {
	if _, err := f.FS.Stat(name); err != nil {
		return 0, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if r, ok := f.replication[key(name)]; ok {
		return r, nil
	}
	return f.defaultReplication, nil
}

// ContentSummary walks name and counts its contents.
func (f *FS) ContentSummary(name string) (core.ContentSummary, error) {
	return core.Summarize(f.FS, name)
}

// Remove removes name and forgets its metadata.
func (f *FS) Remove(name string) error {
	if err := f.FS.Remove(name); err != nil {
		return err
	}
	f.forget(key(name), false)
	return nil
}

// RemoveAll removes name and everything below it, metadata included.
func (f *FS) RemoveAll(name string) error {
	if err := f.FS.RemoveAll(name); err != nil {
		return err
	}
	f.forget(key(name), true)
	return nil
}

// Rename moves oldpath to newpath and carries its metadata along.
func (f *FS) Rename(oldpath, newpath string) error {
	if err := f.FS.Rename(oldpath, newpath); err != nil {
		return err
	}

	from, to := key(oldpath), key(newpath)
	f.mu.Lock()
	defer f.mu.Unlock()
	movePrefix(f.perms, from, to)
	movePrefix(f.replication, from, to)
	return nil
}

func (f *FS) forget(k string, children bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.perms, k)
	delete(f.replication, k)
	if !children {
		return
	}
	for p := range f.perms {
		if isBelow(p, k) {
			delete(f.perms, p)
		}
	}
	for p := range f.replication {
		if isBelow(p, k) {
			delete(f.replication, p)
		}
	}
}

func isBelow(p, dir string) bool {
	if dir == "/" {
		return p != "/"
	}
	return strings.HasPrefix(p, dir+"/")
}

func movePrefix[V any](m map[string]V, from, to string) {
	moved := make(map[string]V)
	for p, v := range m {
		switch {
		case p == from:
			moved[to] = v
		case isBelow(p, from):
			moved[to+strings.TrimPrefix(p, from)] = v
		default:
			continue
		}
		delete(m, p)
	}
	for p, v := range moved {
		m[p] = v
	}
}

// fileInfo overrides the mode of a wrapped fs.FileInfo.
type fileInfo struct {
	fs.FileInfo
	mode fs.FileMode
}

func (fi *fileInfo) Mode() fs.FileMode { return fi.mode }

// dirEntry applies tracked permissions to the info of a wrapped entry.
type dirEntry struct {
	fs.DirEntry
	fs   *FS
	name string
}

func (d *dirEntry) Info() (fs.FileInfo, error) {
	info, err := d.DirEntry.Info()
	if err != nil {
		return nil, err
	}
	return d.fs.withPerm(d.name, info), nil
}

var _ core.DistributedFS = (*FS)(nil)
