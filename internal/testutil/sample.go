package testutil

import (
	"path"
	"testing"

	"github.com/jmgilman/envstage/fs/core"
)

// SampleFiles lists the files of the sample plugin tree, relative to its
// root. The tree holds 6 files and 5 directories below the root.
var SampleFiles = []string{
	"jar1.jar",
	"jar2.jar",
	"folder/file.txt",
	"pentaho-mapreduce-libraries.zip",
	"hadoop-configurations/test-config/lib/required.jar",
	"hadoop-configurations/test-config/lib/pmr/configuration-specific.jar",
}

// ConfigLibDir is the configuration-specific library folder inside the
// sample tree.
const ConfigLibDir = "hadoop-configurations/test-config/lib/pmr"

// WriteSampleTree creates the sample tree at root on fsys. Every file is
// empty, mirroring placeholder jars.
func WriteSampleTree(t testing.TB, fsys core.FS, root string) {
	t.Helper()
	for _, name := range SampleFiles {
		p := path.Join(root, name)
		if err := fsys.MkdirAll(path.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): %v", path.Dir(p), err)
		}
		if err := fsys.WriteFile(p, nil, 0o644); err != nil {
			t.Fatalf("WriteFile(%q): %v", p, err)
		}
	}
}

// SampleArchive returns the entries of a small runtime bundle: 3 files in
// 5 directories, so a fresh extraction yields 9 paths including the root.
func SampleArchive() []Entry {
	return []Entry{
		Dir("META-INF"),
		File("META-INF/MANIFEST.MF", "Manifest-Version: 1.0\n"),
		Dir("org"),
		Dir("org/pentaho"),
		Dir("org/pentaho/mapreduce"),
		File("org/pentaho/mapreduce/Sample.class", "cafebabe"),
		Dir("org/pentaho/mapreduce/sample"),
		File("org/pentaho/mapreduce/sample/Sample$Mapper.class", "cafebabe"),
	}
}

// EmptyEnvironment returns the entries of an environment archive holding a
// lib folder with placeholder engine jars.
func EmptyEnvironment() []Entry {
	return []Entry{
		Dir("lib"),
		File("lib/kettle-core.jar", ""),
		File("lib/kettle-engine.jar", ""),
	}
}

// WriteArchive stores data at name on fsys, creating parent directories.
func WriteArchive(t testing.TB, fsys core.FS, name string, data []byte, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("build archive %q: %v", name, err)
	}
	if err := fsys.MkdirAll(path.Dir(name), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q): %v", path.Dir(name), err)
	}
	if err := fsys.WriteFile(name, data, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): %v", name, err)
	}
}
