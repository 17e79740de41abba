package distcache

import (
	"io/fs"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
)

// StageForCache copies source from the local filesystem to dest on dfs. A
// file source is copied to dest itself; a directory is mirrored
// recursively, empty directories included. Afterwards every path under
// dest, dest included, gets StagedMode and the configured replication.
//
// An existing dest is an error unless overwrite is set, in which case it is
// removed first. A failed copy leaves whatever was written in place.
func (u *Util) StageForCache(source string, dfs core.DistributedFS, dest string, overwrite bool) error {
	switch {
	case source == "":
		return errors.MissingArgument("source")
	case dfs == nil:
		return errors.MissingArgument("filesystem")
	case dest == "":
		return errors.MissingArgument("destination")
	}

	ok, err := u.local.Exists(source)
	if err != nil {
		return errors.IO(err, "stat", source)
	}
	if !ok {
		return errors.WithContext(
			errors.Newf(errors.CodeNotFound, "source does not exist: %s", source),
			"path", source,
		)
	}

	exists, err := dfs.Exists(dest)
	if err != nil {
		return errors.IO(err, "stat", dest)
	}
	if exists {
		if !overwrite {
			return errors.WithContext(
				errors.Newf(errors.CodeAlreadyExists, "destination exists: %s", dest),
				"path", dest,
			)
		}
		if err := dfs.RemoveAll(dest); err != nil {
			return errors.IO(err, "remove", dest)
		}
	}

	if err := core.CopyTree(u.local, source, dfs, dest); err != nil {
		return errors.WithContextMap(
			errors.Wrapf(err, errors.CodeIO, "failed to stage %s to %s", source, dest),
			map[string]interface{}{"source": source, "destination": dest},
		)
	}

	paths, bytes, err := u.applyAttributes(dfs, dest)
	if err != nil {
		return err
	}

	u.metrics.ObserveStage(paths, bytes)
	u.logger.Debug("staged tree",
		"source", source,
		"dest", dest,
		"paths", paths,
		"bytes", bytes,
		"replication", u.replication,
	)
	return nil
}

// applyAttributes walks dest and sets mode and replication on every path.
func (u *Util) applyAttributes(dfs core.DistributedFS, dest string) (int, int64, error) {
	var (
		paths int
		bytes int64
	)
	err := dfs.Walk(dest, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.IO(err, "walk", p)
		}
		if err := dfs.SetPermission(p, StagedMode); err != nil {
			return errors.IO(err, "chmod", p)
		}
		if err := dfs.SetReplication(p, u.replication); err != nil {
			return errors.IO(err, "setrep", p)
		}
		paths++
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				bytes += info.Size()
			}
		}
		return nil
	})
	return paths, bytes, err
}
