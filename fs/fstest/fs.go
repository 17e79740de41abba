package fstest

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"slices"
	"testing"

	"github.com/jmgilman/envstage/fs/core"
)

// TestReadFS checks Open, Stat, ReadDir, ReadFile and Exists.
func TestReadFS(t *testing.T, filesystem core.FS, config FSTestConfig) {
	content := []byte("test file content")
	mustMkdirAll(t, filesystem, "testdir")
	mustWrite(t, filesystem, "testdir/testfile.txt", content)

	config.run(t, "Open", func(t *testing.T) {
		f, err := filesystem.Open("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("Open(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		defer func() { _ = f.Close() }()

		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll(): got error %v", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("Read(): got %q, want %q", data, content)
		}
	})

	config.run(t, "Stat", func(t *testing.T) {
		info, err := filesystem.Stat("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		if info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = true, want false", "testdir/testfile.txt")
		}
		if info.Size() != int64(len(content)) {
			t.Errorf("Stat(%q): Size() = %d, want %d", "testdir/testfile.txt", info.Size(), len(content))
		}

		info, err = filesystem.Stat("testdir")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "testdir", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = false, want true", "testdir")
		}

		if _, err := filesystem.Stat("missing.txt"); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stat(%q): got error %v, want fs.ErrNotExist", "missing.txt", err)
		}
	})

	config.run(t, "ReadDir", func(t *testing.T) {
		entries, err := filesystem.ReadDir("testdir")
		if err != nil {
			t.Fatalf("ReadDir(%q): got error %v, want nil", "testdir", err)
		}
		if len(entries) != 1 || entries[0].Name() != "testfile.txt" || entries[0].IsDir() {
			t.Errorf("ReadDir(%q): got %v, want single file testfile.txt", "testdir", entryNames(entries))
		}
	})

	config.run(t, "ReadFile", func(t *testing.T) {
		data, err := filesystem.ReadFile("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("ReadFile(%q): got %q, want %q", "testdir/testfile.txt", data, content)
		}
		if _, err := filesystem.ReadFile("missing.txt"); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadFile(%q): got error %v, want fs.ErrNotExist", "missing.txt", err)
		}
	})

	config.run(t, "Exists", func(t *testing.T) {
		for name, want := range map[string]bool{
			"testdir/testfile.txt": true,
			"testdir":              true,
			"missing.txt":          false,
		} {
			got, err := filesystem.Exists(name)
			if err != nil {
				t.Errorf("Exists(%q): got error %v, want nil", name, err)
				continue
			}
			if got != want {
				t.Errorf("Exists(%q) = %v, want %v", name, got, want)
			}
		}
	})
}

// TestWriteFS checks Create, OpenFile, WriteFile, Mkdir and MkdirAll.
func TestWriteFS(t *testing.T, filesystem core.FS, config FSTestConfig) {
	config.run(t, "Create", func(t *testing.T) {
		f, err := filesystem.Create("created.txt")
		if err != nil {
			t.Fatalf("Create(%q): got error %v, want nil", "created.txt", err)
		}
		if _, err := f.Write([]byte("created")); err != nil {
			t.Fatalf("Write(): got error %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v", err)
		}
		assertContent(t, filesystem, "created.txt", "created")
	})

	config.run(t, "WriteFileTruncates", func(t *testing.T) {
		mustWrite(t, filesystem, "trunc.txt", []byte("a much longer first version"))
		mustWrite(t, filesystem, "trunc.txt", []byte("short"))
		assertContent(t, filesystem, "trunc.txt", "short")
	})

	config.run(t, "OpenFile", func(t *testing.T) {
		f, err := filesystem.OpenFile("opened.txt", flagCreateWrite, 0o644)
		if err != nil {
			t.Fatalf("OpenFile(%q): got error %v, want nil", "opened.txt", err)
		}
		if _, err := f.Write([]byte("opened")); err != nil {
			t.Fatalf("Write(): got error %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v", err)
		}
		assertContent(t, filesystem, "opened.txt", "opened")
	})

	config.run(t, "Mkdir", func(t *testing.T) {
		if err := filesystem.Mkdir("newdir", 0o755); err != nil {
			t.Fatalf("Mkdir(%q): got error %v, want nil", "newdir", err)
		}
		assertDir(t, filesystem, "newdir")
		if err := filesystem.Mkdir("newdir", 0o755); !errors.Is(err, fs.ErrExist) {
			t.Errorf("Mkdir(%q) twice: got error %v, want fs.ErrExist", "newdir", err)
		}
	})

	config.run(t, "MkdirAll", func(t *testing.T) {
		if err := filesystem.MkdirAll("a/b/c", 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): got error %v, want nil", "a/b/c", err)
		}
		for _, dir := range []string{"a", "a/b", "a/b/c"} {
			assertDir(t, filesystem, dir)
		}
		if err := filesystem.MkdirAll("a/b/c", 0o755); err != nil {
			t.Errorf("MkdirAll(%q) twice: got error %v, want nil", "a/b/c", err)
		}
	})

	config.run(t, "NestedWrite", func(t *testing.T) {
		if !config.ImplicitParentDirs {
			mustMkdirAll(t, filesystem, "nested/deep")
		}
		mustWrite(t, filesystem, "nested/deep/file.jar", []byte("jar"))
		assertContent(t, filesystem, "nested/deep/file.jar", "jar")
		assertDir(t, filesystem, "nested/deep")
	})
}

// TestManageFS checks Remove, RemoveAll and Rename.
func TestManageFS(t *testing.T, filesystem core.FS, config FSTestConfig) {
	config.run(t, "Remove", func(t *testing.T) {
		mustWrite(t, filesystem, "remove.txt", []byte("x"))
		if err := filesystem.Remove("remove.txt"); err != nil {
			t.Fatalf("Remove(%q): got error %v, want nil", "remove.txt", err)
		}
		assertMissing(t, filesystem, "remove.txt")

		err := filesystem.Remove("remove.txt")
		if config.IdempotentDelete {
			if err != nil {
				t.Errorf("Remove(%q) on missing path: got error %v, want nil", "remove.txt", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Remove(%q) on missing path: got error %v, want fs.ErrNotExist", "remove.txt", err)
		}
	})

	config.run(t, "RemoveAll", func(t *testing.T) {
		mustMkdirAll(t, filesystem, "tree/lib")
		mustMkdirAll(t, filesystem, "tree/plugins/empty")
		mustWrite(t, filesystem, "tree/lib/a.jar", []byte("a"))
		mustWrite(t, filesystem, "tree/lib/b.jar", []byte("b"))

		if err := filesystem.RemoveAll("tree"); err != nil {
			t.Fatalf("RemoveAll(%q): got error %v, want nil", "tree", err)
		}
		for _, p := range []string{"tree", "tree/lib", "tree/lib/a.jar", "tree/plugins/empty"} {
			assertMissing(t, filesystem, p)
		}
		if err := filesystem.RemoveAll("tree"); err != nil {
			t.Errorf("RemoveAll(%q) on missing path: got error %v, want nil", "tree", err)
		}
	})

	config.run(t, "RemoveAllKeepsSiblings", func(t *testing.T) {
		mustMkdirAll(t, filesystem, "env")
		mustMkdirAll(t, filesystem, "environment")
		mustWrite(t, filesystem, "env/a.jar", []byte("a"))
		mustWrite(t, filesystem, "environment/b.jar", []byte("b"))

		if err := filesystem.RemoveAll("env"); err != nil {
			t.Fatalf("RemoveAll(%q): got error %v, want nil", "env", err)
		}
		assertContent(t, filesystem, "environment/b.jar", "b")
	})

	config.run(t, "Rename", func(t *testing.T) {
		mustWrite(t, filesystem, "old.txt", []byte("content"))
		if err := filesystem.Rename("old.txt", "new.txt"); err != nil {
			t.Fatalf("Rename(%q, %q): got error %v, want nil", "old.txt", "new.txt", err)
		}
		assertMissing(t, filesystem, "old.txt")
		assertContent(t, filesystem, "new.txt", "content")
	})
}

// TestWalkFS checks Walk ordering, SkipDir and empty directories.
func TestWalkFS(t *testing.T, filesystem core.FS, config FSTestConfig) {
	mustMkdirAll(t, filesystem, "walk/sub")
	mustMkdirAll(t, filesystem, "walk/empty")
	mustWrite(t, filesystem, "walk/a.txt", []byte("a"))
	mustWrite(t, filesystem, "walk/sub/b.txt", []byte("b"))

	config.run(t, "All", func(t *testing.T) {
		visited := walkPaths(t, filesystem, "walk", nil)
		want := []string{"walk", "walk/a.txt", "walk/empty", "walk/sub", "walk/sub/b.txt"}
		if !slices.Equal(visited, want) {
			t.Errorf("Walk(%q): visited %v, want %v", "walk", visited, want)
		}
	})

	config.run(t, "SkipDir", func(t *testing.T) {
		visited := walkPaths(t, filesystem, "walk", func(p string, d fs.DirEntry) error {
			if d.IsDir() && p == "walk/sub" {
				return fs.SkipDir
			}
			return nil
		})
		if slices.Contains(visited, "walk/sub/b.txt") {
			t.Errorf("Walk(%q) with SkipDir: visited %v, want walk/sub skipped", "walk", visited)
		}
	})

	config.run(t, "File", func(t *testing.T) {
		visited := walkPaths(t, filesystem, "walk/a.txt", nil)
		if !slices.Equal(visited, []string{"walk/a.txt"}) {
			t.Errorf("Walk(%q): visited %v, want only the file", "walk/a.txt", visited)
		}
	})

	config.run(t, "Missing", func(t *testing.T) {
		err := filesystem.Walk("nowhere", func(_ string, _ fs.DirEntry, err error) error {
			return err
		})
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Walk(%q): got error %v, want fs.ErrNotExist", "nowhere", err)
		}
	})
}

// TestCopyTree checks core.CopyTree within a single provider.
func TestCopyTree(t *testing.T, filesystem core.FS, config FSTestConfig) {
	mustMkdirAll(t, filesystem, "src/lib")
	mustMkdirAll(t, filesystem, "src/empty")
	mustWrite(t, filesystem, "src/lib/a.jar", []byte("a"))
	mustWrite(t, filesystem, "src/readme.txt", []byte("readme"))

	config.run(t, "Directory", func(t *testing.T) {
		if err := core.CopyTree(filesystem, "src", filesystem, "dst"); err != nil {
			t.Fatalf("CopyTree(%q, %q): got error %v, want nil", "src", "dst", err)
		}
		assertContent(t, filesystem, "dst/lib/a.jar", "a")
		assertContent(t, filesystem, "dst/readme.txt", "readme")
		assertDir(t, filesystem, "dst/empty")
	})

	config.run(t, "File", func(t *testing.T) {
		if err := core.CopyTree(filesystem, "src/lib/a.jar", filesystem, "single/b.jar"); err != nil {
			t.Fatalf("CopyTree(%q, %q): got error %v, want nil", "src/lib/a.jar", "single/b.jar", err)
		}
		assertContent(t, filesystem, "single/b.jar", "a")
	})
}
