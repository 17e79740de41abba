// Package archive reads runtime bundles and materializes them on a core.FS.
//
// Two container formats are understood: zip (including jar) and gzip
// compressed tar. Archives are opened from any core.FS and extracted onto any
// core.FS, so a bundle can be read from the local disk and unpacked into an
// in-memory filesystem during tests.
//
//	a, err := archive.Open(local, "/bundles/env.zip")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	stats, err := archive.Extract(a, local, "/tmp/env", archive.ExtractOptions{})
package archive

import (
	"io"
	"strings"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
)

// Format identifies an archive container format.
type Format int

const (
	// FormatUnknown is returned for names without a recognized extension.
	FormatUnknown Format = iota
	// FormatZip covers .zip and .jar files.
	FormatZip
	// FormatTarGz covers .tar.gz and .tgz files.
	FormatTarGz
)

// String returns the conventional extension of the format.
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarGz:
		return "tar.gz"
	default:
		return "unknown"
	}
}

// DetectFormat picks a format from the file extension of name.
func DetectFormat(name string) Format {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"), strings.HasSuffix(lower, ".jar"):
		return FormatZip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz
	default:
		return FormatUnknown
	}
}

// Entry is a single archive member.
type Entry struct {
	// Name is the member path as stored in the archive.
	Name string
	// IsDir reports an explicit directory entry.
	IsDir bool
	// Size is the declared uncompressed size.
	Size int64

	open func() (io.ReadCloser, error)
}

// Open returns the entry content. For tar archives the reader is only
// valid inside the Walk callback that produced the entry.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.IsDir || e.open == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return e.open()
}

// Archive is a read-only container of entries.
type Archive interface {
	// Name returns the path the archive was opened from.
	Name() string
	// Format returns the container format.
	Format() Format
	// Walk calls fn for every entry in archive order. Entries are neither
	// sorted nor de-duplicated.
	Walk(fn func(Entry) error) error
	// Close releases the underlying file.
	Close() error
}

// Open opens the archive stored at name on fsys, choosing the reader by
// extension.
func Open(fsys core.FS, name string) (Archive, error) {
	switch DetectFormat(name) {
	case FormatZip:
		return openZip(fsys, name)
	case FormatTarGz:
		return &tarGzArchive{fsys: fsys, name: name}, nil
	default:
		return nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidInput, "unsupported archive format: %s", name),
			"path", name,
		)
	}
}
