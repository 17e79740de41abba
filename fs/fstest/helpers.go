package fstest

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/jmgilman/envstage/fs/core"
)

const flagCreateWrite = os.O_WRONLY | os.O_CREATE | os.O_TRUNC

func mustWrite(t *testing.T, filesystem core.FS, name string, data []byte) {
	t.Helper()
	if err := filesystem.WriteFile(name, data, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): setup failed: %v", name, err)
	}
}

func mustMkdirAll(t *testing.T, filesystem core.FS, name string) {
	t.Helper()
	if err := filesystem.MkdirAll(name, 0o755); err != nil {
		t.Fatalf("MkdirAll(%q): setup failed: %v", name, err)
	}
}

func assertContent(t *testing.T, filesystem core.FS, name, want string) {
	t.Helper()
	data, err := filesystem.ReadFile(name)
	if err != nil {
		t.Errorf("ReadFile(%q): got error %v, want nil", name, err)
		return
	}
	if string(data) != want {
		t.Errorf("ReadFile(%q): got %q, want %q", name, data, want)
	}
}

func assertDir(t *testing.T, filesystem core.FS, name string) {
	t.Helper()
	info, err := filesystem.Stat(name)
	if err != nil {
		t.Errorf("Stat(%q): got error %v, want nil", name, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("Stat(%q): IsDir() = false, want true", name)
	}
}

func assertMissing(t *testing.T, filesystem core.FS, name string) {
	t.Helper()
	if _, err := filesystem.Stat(name); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat(%q): got error %v, want fs.ErrNotExist", name, err)
	}
}

// walkPaths collects the paths Walk visits. visit may return fs.SkipDir.
func walkPaths(t *testing.T, filesystem core.FS, root string, visit func(string, fs.DirEntry) error) []string {
	t.Helper()
	var visited []string
	err := filesystem.Walk(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if visit != nil {
			if verr := visit(p, d); verr != nil {
				return verr
			}
		}
		visited = append(visited, p)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk(%q): got error %v, want nil", root, err)
	}
	return visited
}

func entryNames(entries []fs.DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
