package localdfs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/envstage/fs/billy"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/fs/fstest"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	dfs := New(billy.NewMemory(), WithDefaultReplication(3))
	require.NoError(t, dfs.WriteFile("/env/lib/a.jar", []byte("aaaa"), 0o644))
	require.NoError(t, dfs.WriteFile("/env/plugins/p/b.jar", []byte("bb"), 0o644))
	return dfs
}

func TestFS_SetPermission(t *testing.T) {
	dfs := newTestFS(t)

	require.NoError(t, dfs.SetPermission("/env/lib/a.jar", 0o755))
	require.NoError(t, dfs.SetPermission("/env/lib", 0o755))

	info, err := dfs.Stat("/env/lib/a.jar")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o755), info.Mode().Perm())
	assert.False(t, info.IsDir())

	info, err = dfs.Stat("/env/lib")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o755), info.Mode().Perm())
	assert.True(t, info.IsDir())

	err = dfs.SetPermission("/env/missing", 0o755)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFS_PermissionVisibleInListings(t *testing.T) {
	dfs := newTestFS(t)
	require.NoError(t, dfs.SetPermission("/env/lib/a.jar", 0o700))

	entries, err := dfs.ReadDir("/env/lib")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, "a.jar", entries[0].Name())
	assert.Equal(t, fs.FileMode(0o700), info.Mode().Perm())

	modes := map[string]fs.FileMode{}
	err = dfs.Walk("/env", func(p string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		info, err := d.Info()
		require.NoError(t, err)
		modes[p] = info.Mode().Perm()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o700), modes["/env/lib/a.jar"])
}

func TestFS_Replication(t *testing.T) {
	dfs := newTestFS(t)

	r, err := dfs.Replication("/env/lib/a.jar")
	require.NoError(t, err)
	assert.Equal(t, int16(3), r)

	require.NoError(t, dfs.SetReplication("/env/lib/a.jar", 10))
	r, err = dfs.Replication("env/lib/a.jar")
	require.NoError(t, err)
	assert.Equal(t, int16(10), r)

	require.ErrorIs(t, dfs.SetReplication("/env/lib/a.jar", 0), fs.ErrInvalid)
	require.ErrorIs(t, dfs.SetReplication("/env/missing", 2), fs.ErrNotExist)

	_, err = dfs.Replication("/env/missing")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFS_RemoveAllForgetsMetadata(t *testing.T) {
	dfs := newTestFS(t)
	require.NoError(t, dfs.SetReplication("/env/lib/a.jar", 10))
	require.NoError(t, dfs.SetPermission("/env/lib/a.jar", 0o700))

	require.NoError(t, dfs.RemoveAll("/env"))
	require.NoError(t, dfs.WriteFile("/env/lib/a.jar", []byte("again"), 0o644))

	r, err := dfs.Replication("/env/lib/a.jar")
	require.NoError(t, err)
	assert.Equal(t, int16(3), r)
	assert.Empty(t, dfs.perms)
}

func TestFS_RenameMovesMetadata(t *testing.T) {
	dfs := newTestFS(t)
	require.NoError(t, dfs.SetReplication("/env/lib/a.jar", 7))

	require.NoError(t, dfs.Rename("/env/lib/a.jar", "/env/lib/c.jar"))

	r, err := dfs.Replication("/env/lib/c.jar")
	require.NoError(t, err)
	assert.Equal(t, int16(7), r)
}

func TestFS_ContentSummary(t *testing.T) {
	dfs := newTestFS(t)

	summary, err := dfs.ContentSummary("/env")
	require.NoError(t, err)
	assert.Equal(t, core.ContentSummary{Length: 6, FileCount: 2, DirectoryCount: 4}, summary)
}

func TestIsBelow(t *testing.T) {
	assert.True(t, isBelow("/env/lib", "/env"))
	assert.False(t, isBelow("/environment", "/env"))
	assert.False(t, isBelow("/env", "/env"))
	assert.True(t, isBelow("/env", "/"))
}

func TestFS_Conformance(t *testing.T) {
	fstest.TestDistributedSuite(t, func() core.DistributedFS {
		return New(billy.NewMemory())
	}, fstest.POSIXTestConfig())
}
