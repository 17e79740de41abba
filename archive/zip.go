package archive

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
)

type zipArchive struct {
	name   string
	file   io.Closer
	reader *zip.Reader
}

// openZip reads the central directory. Files that support io.ReaderAt are
// read in place; anything else is buffered in memory.
func openZip(fsys core.FS, name string) (*zipArchive, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, errors.IO(err, "open", name)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.IO(err, "stat", name)
	}

	ra, ok := f.(io.ReaderAt)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			_ = f.Close()
			return nil, errors.IO(err, "read", name)
		}
		ra = bytes.NewReader(data)
	}

	// Insecure names are rejected per entry during extraction.
	zr, err := zip.NewReader(ra, info.Size())
	if err != nil && err != zip.ErrInsecurePath {
		_ = f.Close()
		return nil, errors.WithContext(
			errors.Wrapf(err, errors.CodeInvalidInput, "invalid zip archive: %s", name),
			"path", name,
		)
	}

	return &zipArchive{name: name, file: f, reader: zr}, nil
}

func (z *zipArchive) Name() string   { return z.name }
func (z *zipArchive) Format() Format { return FormatZip }

func (z *zipArchive) Walk(fn func(Entry) error) error {
	for _, zf := range z.reader.File {
		entry := Entry{
			Name:  zf.Name,
			IsDir: zf.FileInfo().IsDir(),
			Size:  int64(zf.UncompressedSize64),
			open:  zf.Open,
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

func (z *zipArchive) Close() error {
	return z.file.Close()
}
