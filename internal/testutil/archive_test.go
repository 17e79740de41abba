package testutil

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipBytes(t *testing.T) {
	data, err := ZipBytes(File("a/b.txt", "hello"), Dir("a"))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "a/b.txt", zr.File[0].Name)
	assert.Equal(t, "a/", zr.File[1].Name)
	assert.True(t, zr.File[1].FileInfo().IsDir())

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestTarGzBytes(t *testing.T) {
	data, err := TarGzBytes(SampleArchive()...)
	require.NoError(t, err)

	gr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gr)

	var dirs, files int
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag == tar.TypeDir {
			dirs++
		} else {
			files++
		}
	}
	assert.Equal(t, 5, dirs)
	assert.Equal(t, 3, files)
}
