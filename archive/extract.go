package archive

import (
	"io"
	"os"
	"path"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/internal/validate"
)

// ExtractOptions bounds what an extraction may write. Zero values mean no
// limit.
type ExtractOptions struct {
	// MaxFiles is the maximum number of file entries.
	MaxFiles int
	// MaxSize is the maximum total uncompressed size of all files.
	MaxSize int64
	// MaxFileSize is the maximum size of any single file.
	MaxFileSize int64
}

// Stats summarizes an extraction.
type Stats struct {
	// Entries is the number of archive entries processed.
	Entries int
	// Files is the number of files written.
	Files int
	// Dirs is the number of distinct directories created below the
	// destination, explicit or inferred.
	Dirs int
	// Bytes is the total number of file bytes written.
	Bytes int64
}

// Extract materializes every entry of a under dest on dst. Directory entries
// are created with MkdirAll; file entries get their parent chain created
// first, so archives that omit directory entries extract the same tree as
// archives that list them. Entry names are validated and resolved inside
// dest before anything is written.
func Extract(a Archive, dst core.FS, dest string, opts ExtractOptions) (Stats, error) {
	var stats Stats
	if a == nil {
		return stats, errors.MissingArgument("archive")
	}
	if dest == "" {
		return stats, errors.MissingArgument("destination")
	}

	x := &extractor{
		dst:       dst,
		dest:      path.Clean(dest),
		opts:      opts,
		validator: validate.NewEntryValidator(),
		vfs:       lstatVFS{fsys: dst},
		dirs:      make(map[string]struct{}),
		stats:     &stats,
	}
	if err := dst.MkdirAll(x.dest, 0o755); err != nil {
		return stats, errors.IO(err, "mkdir", x.dest)
	}

	err := a.Walk(x.entry)
	return stats, err
}

type extractor struct {
	dst       core.FS
	dest      string
	opts      ExtractOptions
	validator *validate.EntryValidator
	vfs       securejoin.VFS
	dirs      map[string]struct{}
	stats     *Stats
}

func (x *extractor) entry(e Entry) error {
	x.stats.Entries++

	if err := x.validator.Validate(e.Name); err != nil {
		return errors.WithContext(
			errors.Wrapf(err, errors.CodeInvalidInput, "unsafe archive entry %q", e.Name),
			"entry", e.Name,
		)
	}
	rel := validate.Clean(e.Name)
	if rel == "" {
		return nil
	}

	target, err := x.resolve(rel)
	if err != nil {
		return err
	}

	if e.IsDir {
		return x.mkdirAll(target)
	}
	if err := x.mkdirAll(path.Dir(target)); err != nil {
		return err
	}
	return x.writeFile(e, target)
}

// resolve joins rel onto dest without letting it escape, even through
// symlinks already present on the destination filesystem.
func (x *extractor) resolve(rel string) (string, error) {
	joined, err := securejoin.SecureJoinVFS(x.dest, rel, x.vfs)
	if err != nil {
		return "", errors.WithContext(
			errors.Wrapf(err, errors.CodeInvalidInput, "cannot resolve archive entry %q", rel),
			"entry", rel,
		)
	}
	return filepath.ToSlash(joined), nil
}

// mkdirAll creates dir and counts every new directory below dest once.
func (x *extractor) mkdirAll(dir string) error {
	if dir == x.dest {
		return nil
	}
	if _, seen := x.dirs[dir]; seen {
		return nil
	}
	if err := x.dst.MkdirAll(dir, 0o755); err != nil {
		return errors.IO(err, "mkdir", dir)
	}
	for d := dir; d != x.dest && d != "." && d != "/"; d = path.Dir(d) {
		if _, seen := x.dirs[d]; seen {
			break
		}
		x.dirs[d] = struct{}{}
		x.stats.Dirs++
	}
	return nil
}

func (x *extractor) writeFile(e Entry, target string) error {
	if x.opts.MaxFiles > 0 && x.stats.Files >= x.opts.MaxFiles {
		return errors.Newf(errors.CodeInvalidInput, "archive exceeds maximum file count of %d", x.opts.MaxFiles)
	}
	if x.opts.MaxFileSize > 0 && e.Size > x.opts.MaxFileSize {
		return errors.Newf(errors.CodeInvalidInput, "entry %s exceeds maximum file size of %d bytes", e.Name, x.opts.MaxFileSize)
	}

	src, err := e.Open()
	if err != nil {
		return errors.IO(err, "read", e.Name)
	}
	defer func() { _ = src.Close() }()

	out, err := x.dst.Create(target)
	if err != nil {
		return errors.IO(err, "create", target)
	}

	// Declared sizes can lie, so the copy itself is bounded too.
	var r io.Reader = src
	limit := x.remaining()
	if limit >= 0 {
		r = io.LimitReader(src, limit+1)
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.IO(err, "write", target)
	}
	if limit >= 0 && n > limit {
		return errors.Newf(errors.CodeInvalidInput, "entry %s exceeds extraction size limits", e.Name)
	}

	x.stats.Files++
	x.stats.Bytes += n
	return nil
}

// remaining returns how many bytes the next file may hold, or -1 when
// unbounded.
func (x *extractor) remaining() int64 {
	limit := int64(-1)
	if x.opts.MaxFileSize > 0 {
		limit = x.opts.MaxFileSize
	}
	if x.opts.MaxSize > 0 {
		left := x.opts.MaxSize - x.stats.Bytes
		if left < 0 {
			left = 0
		}
		if limit < 0 || left < limit {
			limit = left
		}
	}
	return limit
}

// lstatVFS lets securejoin inspect a core.FS. Providers without symlink
// support never report ModeSymlink, so Readlink is unreachable for them.
type lstatVFS struct {
	fsys core.FS
}

func (v lstatVFS) Lstat(name string) (os.FileInfo, error) {
	if mfs, ok := v.fsys.(core.MetadataFS); ok {
		return mfs.Lstat(filepath.ToSlash(name))
	}
	return v.fsys.Stat(filepath.ToSlash(name))
}

func (v lstatVFS) Readlink(name string) (string, error) {
	return "", &os.PathError{Op: "readlink", Path: name, Err: core.ErrUnsupported}
}
