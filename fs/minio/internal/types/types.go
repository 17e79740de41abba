// Package types holds the fs.FileInfo and fs.DirEntry values returned for
// objects and directory markers.
package types // nolint:revive // Internal package with clear purpose

import (
	"io/fs"
	"time"
)

// Default permission bits for paths that carry no mode metadata.
const (
	DefaultFileMode fs.FileMode = 0o644
	DefaultDirMode  fs.FileMode = 0o755
)

// FileInfo implements fs.FileInfo for objects and directories.
type FileInfo struct {
	FileName    string
	FileSize    int64
	FileModTime time.Time
	FileMode    fs.FileMode
}

// NewFileInfo creates a FileInfo for a regular object.
func NewFileInfo(name string, size int64, modTime time.Time, perm fs.FileMode) *FileInfo {
	return &FileInfo{FileName: name, FileSize: size, FileModTime: modTime, FileMode: perm.Perm()}
}

// NewDirInfo creates a FileInfo for a directory.
func NewDirInfo(name string, modTime time.Time, perm fs.FileMode) *FileInfo {
	return &FileInfo{FileName: name, FileModTime: modTime, FileMode: fs.ModeDir | perm.Perm()}
}

func (fi *FileInfo) Name() string       { return fi.FileName }
func (fi *FileInfo) Size() int64        { return fi.FileSize }
func (fi *FileInfo) Mode() fs.FileMode  { return fi.FileMode }
func (fi *FileInfo) ModTime() time.Time { return fi.FileModTime }
func (fi *FileInfo) IsDir() bool        { return fi.FileMode.IsDir() }
func (fi *FileInfo) Sys() interface{}   { return nil }

// DirEntry implements fs.DirEntry from a listing result.
type DirEntry struct {
	info *FileInfo
}

// NewDirEntry creates a listing entry. Listings carry no metadata, so modes
// are the defaults; Stat returns the stored ones.
func NewDirEntry(name string, isDir bool, size int64, modTime time.Time) *DirEntry {
	if isDir {
		return &DirEntry{info: NewDirInfo(name, modTime, DefaultDirMode)}
	}
	return &DirEntry{info: NewFileInfo(name, size, modTime, DefaultFileMode)}
}

func (e *DirEntry) Name() string               { return e.info.Name() }
func (e *DirEntry) IsDir() bool                { return e.info.IsDir() }
func (e *DirEntry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e *DirEntry) Info() (fs.FileInfo, error) { return e.info, nil }

// Compile-time interface checks.
var (
	_ fs.FileInfo = (*FileInfo)(nil)
	_ fs.DirEntry = (*DirEntry)(nil)
)
