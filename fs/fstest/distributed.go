package fstest

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/jmgilman/envstage/fs/core"
)

// TestDistributedSuite runs the core.FS suite and the staging metadata
// checks against a core.DistributedFS provider.
func TestDistributedSuite(t *testing.T, newFS func() core.DistributedFS, config FSTestConfig) {
	TestSuiteWithConfig(t, func() core.FS { return newFS() }, config)
	config.run(t, "DistributedFS", func(t *testing.T) { TestDistributedFS(t, newFS(), config) })
}

// TestDistributedFS checks SetPermission, SetReplication, Replication and
// ContentSummary.
func TestDistributedFS(t *testing.T, filesystem core.DistributedFS, config FSTestConfig) {
	mustMkdirAll(t, filesystem, "env/lib")
	mustMkdirAll(t, filesystem, "env/plugins/empty")
	mustWrite(t, filesystem, "env/lib/a.jar", []byte("aaaa"))
	mustWrite(t, filesystem, "env/lib/b.jar", []byte("bb"))

	config.run(t, "SetPermission", func(t *testing.T) {
		for _, p := range []string{"env", "env/lib", "env/lib/a.jar"} {
			if err := filesystem.SetPermission(p, 0o755); err != nil {
				t.Fatalf("SetPermission(%q): got error %v, want nil", p, err)
			}
			info, err := filesystem.Stat(p)
			if err != nil {
				t.Fatalf("Stat(%q): got error %v, want nil", p, err)
			}
			if info.Mode().Perm() != 0o755 {
				t.Errorf("Stat(%q): Mode().Perm() = %o, want 755", p, info.Mode().Perm())
			}
		}

		info, err := filesystem.Stat("env/lib/a.jar")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "env/lib/a.jar", err)
		}
		if info.IsDir() || info.Size() != 4 {
			t.Errorf("Stat(%q) after SetPermission: IsDir=%v Size=%d, want file of 4 bytes", "env/lib/a.jar", info.IsDir(), info.Size())
		}
		assertContent(t, filesystem, "env/lib/a.jar", "aaaa")

		if err := filesystem.SetPermission("env/missing.jar", 0o755); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("SetPermission(%q): got error %v, want fs.ErrNotExist", "env/missing.jar", err)
		}
	})

	config.run(t, "SetReplication", func(t *testing.T) {
		if err := filesystem.SetReplication("env/lib/b.jar", 10); err != nil {
			t.Fatalf("SetReplication(%q): got error %v, want nil", "env/lib/b.jar", err)
		}
		got, err := filesystem.Replication("env/lib/b.jar")
		if err != nil {
			t.Fatalf("Replication(%q): got error %v, want nil", "env/lib/b.jar", err)
		}
		if got != 10 {
			t.Errorf("Replication(%q) = %d, want 10", "env/lib/b.jar", got)
		}

		if err := filesystem.SetReplication("env/lib", 10); err != nil {
			t.Errorf("SetReplication(%q): got error %v, want nil", "env/lib", err)
		}
		if err := filesystem.SetReplication("env/missing.jar", 10); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("SetReplication(%q): got error %v, want fs.ErrNotExist", "env/missing.jar", err)
		}
	})

	config.run(t, "ContentSummary", func(t *testing.T) {
		summary, err := filesystem.ContentSummary("env")
		if err != nil {
			t.Fatalf("ContentSummary(%q): got error %v, want nil", "env", err)
		}
		want := core.ContentSummary{Length: 6, FileCount: 2, DirectoryCount: 4}
		if summary != want {
			t.Errorf("ContentSummary(%q) = %+v, want %+v", "env", summary, want)
		}

		if _, err := filesystem.ContentSummary("nowhere"); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ContentSummary(%q): got error %v, want fs.ErrNotExist", "nowhere", err)
		}
	})
}
