package distcache

import (
	"io/fs"
	"path"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
)

// LockFileAt returns the lock marker path for root.
func LockFileAt(root string) string {
	return path.Join(root, LockFileName)
}

// IsInstalledAt reports whether root holds a usable environment: root, its
// lib folder and its big-data plugin folder exist as directories and no
// lock marker is present. Errors other than not-exist are returned.
func IsInstalledAt(dfs core.FS, root string) (bool, error) {
	if dfs == nil {
		return false, errors.MissingArgument("filesystem")
	}
	if root == "" {
		return false, errors.MissingArgument("root")
	}

	for _, dir := range []string{
		root,
		path.Join(root, LibDirName),
		path.Join(root, PluginsDirName, BigDataPluginFolderName),
	} {
		ok, err := isDir(dfs, dir)
		if err != nil || !ok {
			return false, err
		}
	}

	locked, err := IsLocked(dfs, root)
	if err != nil {
		return false, err
	}
	return !locked, nil
}

// IsLocked reports whether the lock marker exists at root.
func IsLocked(dfs core.FS, root string) (bool, error) {
	lock := LockFileAt(root)
	ok, err := dfs.Exists(lock)
	if err != nil {
		return false, errors.IO(err, "stat", lock)
	}
	return ok, nil
}

// Lock creates the zero-byte lock marker at root, creating root if needed.
func Lock(dfs core.FS, root string) error {
	if dfs == nil {
		return errors.MissingArgument("filesystem")
	}
	if err := dfs.MkdirAll(root, StagedMode); err != nil {
		return errors.IO(err, "mkdir", root)
	}
	lock := LockFileAt(root)
	if err := dfs.WriteFile(lock, nil, 0o644); err != nil {
		return errors.IO(err, "write", lock)
	}
	return nil
}

// Unlock removes the lock marker at root. A missing marker is not an error.
func Unlock(dfs core.FS, root string) error {
	if dfs == nil {
		return errors.MissingArgument("filesystem")
	}
	lock := LockFileAt(root)
	if err := dfs.Remove(lock); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.IO(err, "remove", lock)
	}
	return nil
}

func isDir(fsys core.FS, name string) (bool, error) {
	info, err := fsys.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.IO(err, "stat", name)
	}
	return info.IsDir(), nil
}
