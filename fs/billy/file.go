package billy

import (
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/jmgilman/envstage/fs/core"
)

// File is a billy.File that also satisfies core.File. Reads, writes,
// seeks and ReadAt go straight to the billy file; zip archives rely on the
// latter.
type File struct {
	billy.File

	stat func(string) (fs.FileInfo, error)
	name string
}

// Stat stats the file through its filesystem since billy.File has no Stat.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.stat(f.name)
}

// Name returns the name given to Open or Create. billy backends disagree on
// what billy.File.Name returns.
func (f *File) Name() string {
	return f.name
}

var (
	_ core.File   = (*File)(nil)
	_ io.Seeker   = (*File)(nil)
	_ io.ReaderAt = (*File)(nil)
)
