package archive_test

import (
	"archive/tar"
	"io"
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/envstage/archive"
	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/billy"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/internal/testutil"
)

// tree returns every path below root, root included, relative to root.
func tree(t *testing.T, fsys core.FS, root string) []string {
	t.Helper()
	var paths []string
	err := fsys.Walk(root, func(p string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if rel == "" {
			rel = "."
		}
		paths = append(paths, rel)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)
	return paths
}

func openArchive(t *testing.T, fsys core.FS, name string, data []byte, err error) archive.Archive {
	t.Helper()
	testutil.WriteArchive(t, fsys, name, data, err)
	a, err := archive.Open(fsys, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want archive.Format
	}{
		{"env.zip", archive.FormatZip},
		{"pentaho-mapreduce-sample.JAR", archive.FormatZip},
		{"env.tar.gz", archive.FormatTarGz},
		{"env.tgz", archive.FormatTarGz},
		{"env.tar", archive.FormatUnknown},
		{"env", archive.FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, archive.DetectFormat(tt.name))
		})
	}
	assert.Equal(t, "zip", archive.FormatZip.String())
	assert.Equal(t, "tar.gz", archive.FormatTarGz.String())
	assert.Equal(t, "unknown", archive.FormatUnknown.String())
}

func TestOpen(t *testing.T) {
	fsys := billy.NewMemory()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := archive.Open(fsys, "/bundles/env.rar")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	})

	t.Run("missing zip", func(t *testing.T) {
		_, err := archive.Open(fsys, "/bundles/missing.zip")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeIO))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("corrupt zip", func(t *testing.T) {
		require.NoError(t, fsys.WriteFile("/bundles/corrupt.zip", []byte("not a zip"), 0o644))
		_, err := archive.Open(fsys, "/bundles/corrupt.zip")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	})

	t.Run("walk reports entries in order", func(t *testing.T) {
		data, err := testutil.ZipBytes(testutil.File("b.txt", "b"), testutil.Dir("a"))
		a := openArchive(t, fsys, "/bundles/order.zip", data, err)
		assert.Equal(t, "/bundles/order.zip", a.Name())
		assert.Equal(t, archive.FormatZip, a.Format())

		var names []string
		require.NoError(t, a.Walk(func(e archive.Entry) error {
			names = append(names, e.Name)
			return nil
		}))
		assert.Equal(t, []string{"b.txt", "a/"}, names)
	})
}

func TestExtract_Sample(t *testing.T) {
	builders := map[string]func(...testutil.Entry) ([]byte, error){
		"sample.jar":    testutil.ZipBytes,
		"sample.tar.gz": testutil.TarGzBytes,
	}
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			fsys := billy.NewMemory()
			data, err := build(testutil.SampleArchive()...)
			a := openArchive(t, fsys, "/bundles/"+name, data, err)

			stats, err := archive.Extract(a, fsys, "/out", archive.ExtractOptions{})
			require.NoError(t, err)
			assert.Equal(t, archive.Stats{Entries: 8, Files: 3, Dirs: 5, Bytes: 38}, stats)

			paths := tree(t, fsys, "/out")
			assert.Len(t, paths, 9)

			content, err := fsys.ReadFile("/out/META-INF/MANIFEST.MF")
			require.NoError(t, err)
			assert.Equal(t, "Manifest-Version: 1.0\n", string(content))
		})
	}
}

func TestExtract_MixedDirectoryEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []testutil.Entry
		want    []string
	}{
		{
			name: "file before its directory",
			entries: []testutil.Entry{
				testutil.File("zipEntriesMixed/someFile.txt", "someOutString"),
				testutil.Dir("zipEntriesMixed"),
			},
			want: []string{".", "zipEntriesMixed", "zipEntriesMixed/someFile.txt"},
		},
		{
			name: "implicit parents only",
			entries: []testutil.Entry{
				testutil.File("a/b/c.txt", "c"),
			},
			want: []string{".", "a", "a/b", "a/b/c.txt"},
		},
		{
			name: "explicit directories first",
			entries: []testutil.Entry{
				testutil.Dir("a"),
				testutil.Dir("a/b"),
				testutil.File("a/b/c.txt", "c"),
			},
			want: []string{".", "a", "a/b", "a/b/c.txt"},
		},
		{
			name: "duplicate entries",
			entries: []testutil.Entry{
				testutil.Dir("a"),
				testutil.File("a/x.txt", "first"),
				testutil.Dir("a/"),
				testutil.File("a/x.txt", "second"),
			},
			want: []string{".", "a", "a/x.txt"},
		},
		{
			name: "empty explicit directory",
			entries: []testutil.Entry{
				testutil.Dir("empty"),
				testutil.File("f.txt", "f"),
			},
			want: []string{".", "empty", "f.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range []string{"mixed.zip", "mixed.tgz"} {
				fsys := billy.NewMemory()
				var data []byte
				var err error
				if archive.DetectFormat(name) == archive.FormatZip {
					data, err = testutil.ZipBytes(tt.entries...)
				} else {
					data, err = testutil.TarGzBytes(tt.entries...)
				}
				a := openArchive(t, fsys, "/"+name, data, err)

				_, err = archive.Extract(a, fsys, "/out", archive.ExtractOptions{})
				require.NoError(t, err, name)
				assert.Equal(t, tt.want, tree(t, fsys, "/out"), name)
			}
		})
	}
}

func TestExtract_DuplicateKeepsLastContent(t *testing.T) {
	fsys := billy.NewMemory()
	data, err := testutil.ZipBytes(
		testutil.File("x.txt", "first"),
		testutil.File("x.txt", "second"),
	)
	a := openArchive(t, fsys, "/dup.zip", data, err)

	_, err = archive.Extract(a, fsys, "/out", archive.ExtractOptions{})
	require.NoError(t, err)

	content, err := fsys.ReadFile("/out/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestExtract_UnsafeEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"parent traversal", "../evil.txt"},
		{"nested traversal", "lib/../../evil.txt"},
		{"absolute", "/etc/evil.txt"},
		{"control character", "lib/\x01.jar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := billy.NewMemory()
			data, err := testutil.ZipBytes(testutil.File(tt.entry, "evil"))
			a := openArchive(t, fsys, "/bundles/evil.zip", data, err)

			_, err = archive.Extract(a, fsys, "/out/env", archive.ExtractOptions{})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

			for _, p := range []string{"/out/evil.txt", "/evil.txt", "/etc/evil.txt"} {
				ok, err := fsys.Exists(p)
				require.NoError(t, err)
				assert.False(t, ok, p)
			}
		})
	}
}

func TestExtract_UnsupportedTarEntry(t *testing.T) {
	fsys := billy.NewMemory()
	data, err := testutil.TarBytesWithHeader(&tar.Header{
		Name:     "lib/link.jar",
		Typeflag: tar.TypeSymlink,
		Linkname: "/etc/passwd",
	})
	a := openArchive(t, fsys, "/bundles/link.tar.gz", data, err)

	_, err = archive.Extract(a, fsys, "/out", archive.ExtractOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestExtract_Limits(t *testing.T) {
	entries := []testutil.Entry{
		testutil.File("a.txt", "aaaa"),
		testutil.File("b.txt", "bbbb"),
		testutil.File("c.txt", "cccc"),
	}

	tests := []struct {
		name    string
		opts    archive.ExtractOptions
		wantErr bool
	}{
		{name: "unlimited", opts: archive.ExtractOptions{}},
		{name: "within limits", opts: archive.ExtractOptions{MaxFiles: 3, MaxSize: 12, MaxFileSize: 4}},
		{name: "too many files", opts: archive.ExtractOptions{MaxFiles: 2}, wantErr: true},
		{name: "file too large", opts: archive.ExtractOptions{MaxFileSize: 3}, wantErr: true},
		{name: "total too large", opts: archive.ExtractOptions{MaxSize: 10}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := billy.NewMemory()
			data, err := testutil.TarGzBytes(entries...)
			a := openArchive(t, fsys, "/limits.tgz", data, err)

			stats, err := archive.Extract(a, fsys, "/out", tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, stats.Files)
			assert.Equal(t, int64(12), stats.Bytes)
		})
	}
}

func TestExtract_MissingArguments(t *testing.T) {
	fsys := billy.NewMemory()

	_, err := archive.Extract(nil, fsys, "/out", archive.ExtractOptions{})
	assert.True(t, errors.HasCode(err, errors.CodeMissingArgument))

	data, err := testutil.ZipBytes(testutil.File("a.txt", "a"))
	a := openArchive(t, fsys, "/a.zip", data, err)
	_, err = archive.Extract(a, fsys, "", archive.ExtractOptions{})
	assert.True(t, errors.HasCode(err, errors.CodeMissingArgument))
}

func TestEntry_OpenDirectory(t *testing.T) {
	e := archive.Entry{Name: "lib/", IsDir: true}
	rc, err := e.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, data)
}
