package archive

import (
	"archive/tar"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
)

// tarGzArchive streams the archive on every Walk, so it holds no open file
// between walks.
type tarGzArchive struct {
	fsys core.FS
	name string
}

func (a *tarGzArchive) Name() string   { return a.name }
func (a *tarGzArchive) Format() Format { return FormatTarGz }
func (a *tarGzArchive) Close() error   { return nil }

func (a *tarGzArchive) Walk(fn func(Entry) error) error {
	f, err := a.fsys.Open(a.name)
	if err != nil {
		return errors.IO(err, "open", a.name)
	}
	defer func() { _ = f.Close() }()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return errors.WithContext(
			errors.Wrapf(err, errors.CodeInvalidInput, "invalid gzip stream: %s", a.name),
			"path", a.name,
		)
	}
	defer func() { _ = gr.Close() }()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.IO(err, "read", a.name)
		}

		var entry Entry
		switch hdr.Typeflag {
		case tar.TypeDir:
			entry = Entry{Name: hdr.Name, IsDir: true}
		case tar.TypeReg:
			entry = Entry{
				Name: hdr.Name,
				Size: hdr.Size,
				open: func() (io.ReadCloser, error) { return io.NopCloser(tr), nil },
			}
		case tar.TypeXGlobalHeader:
			continue
		default:
			return errors.WithContextMap(
				errors.Newf(errors.CodeInvalidInput, "unsupported entry type %q: %s", hdr.Typeflag, hdr.Name),
				map[string]interface{}{"path": a.name, "entry": hdr.Name},
			)
		}

		if err := fn(entry); err != nil {
			return err
		}
	}
}
