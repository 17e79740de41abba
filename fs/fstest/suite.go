// Package fstest provides conformance tests for core.FS and
// core.DistributedFS providers.
//
// Providers call the suites from their own tests with a constructor that
// returns a fresh, empty filesystem:
//
//	func TestMemory(t *testing.T) {
//	    fstest.TestSuite(t, func() core.FS { return billy.NewMemory() })
//	}
//
//	func TestLocalDFS(t *testing.T) {
//	    fstest.TestDistributedSuite(t, func() core.DistributedFS {
//	        return localdfs.New(billy.NewMemory())
//	    }, fstest.POSIXTestConfig())
//	}
package fstest

import (
	"slices"
	"testing"

	"github.com/jmgilman/envstage/fs/core"
)

// FSTestConfig describes behavior that legitimately differs between
// providers.
type FSTestConfig struct {
	// IdempotentDelete indicates Remove on a missing path returns nil.
	IdempotentDelete bool

	// ImplicitParentDirs indicates files can be written without creating
	// their parent directories first.
	ImplicitParentDirs bool

	// SkipTests lists subtests to skip, e.g. "WriteFS/Mkdir".
	SkipTests []string
}

// POSIXTestConfig returns configuration for disk and memory providers.
func POSIXTestConfig() FSTestConfig {
	return FSTestConfig{}
}

// S3TestConfig returns configuration for object-store providers.
func S3TestConfig() FSTestConfig {
	return FSTestConfig{
		IdempotentDelete:   true,
		ImplicitParentDirs: true,
	}
}

func (c FSTestConfig) run(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if slices.Contains(c.SkipTests, name) || slices.Contains(c.SkipTests, t.Name()) {
			t.Skip("skipped by provider configuration")
		}
		fn(t)
	})
}

// TestSuite runs the core.FS conformance tests.
func TestSuite(t *testing.T, newFS func() core.FS) {
	TestSuiteWithConfig(t, newFS, POSIXTestConfig())
}

// TestSuiteWithConfig runs the core.FS conformance tests adapted to config.
func TestSuiteWithConfig(t *testing.T, newFS func() core.FS, config FSTestConfig) {
	config.run(t, "ReadFS", func(t *testing.T) { TestReadFS(t, newFS(), config) })
	config.run(t, "WriteFS", func(t *testing.T) { TestWriteFS(t, newFS(), config) })
	config.run(t, "ManageFS", func(t *testing.T) { TestManageFS(t, newFS(), config) })
	config.run(t, "WalkFS", func(t *testing.T) { TestWalkFS(t, newFS(), config) })
	config.run(t, "CopyTree", func(t *testing.T) { TestCopyTree(t, newFS(), config) })
}
