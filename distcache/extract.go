package distcache

import (
	"github.com/jmgilman/envstage/archive"
	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
)

const tempPattern = "envstage-"

// Extract unpacks the archive at archivePath into dest on the local
// filesystem and returns dest. An empty dest allocates a fresh temporary
// directory, which the caller owns. Extraction never writes into an
// existing destination.
func (u *Util) Extract(archivePath, dest string) (string, error) {
	if archivePath == "" {
		return "", errors.MissingArgument("archive")
	}

	ok, err := u.local.Exists(archivePath)
	if err != nil {
		return "", errors.IO(err, "stat", archivePath)
	}
	if !ok {
		return "", errors.WithContext(
			errors.Newf(errors.CodeInvalidInput, "archive does not exist: %s", archivePath),
			"path", archivePath,
		)
	}

	owned := false
	if dest == "" {
		dest, err = u.tempDirectory()
		if err != nil {
			return "", err
		}
		owned = true
	} else {
		exists, err := u.local.Exists(dest)
		if err != nil {
			return "", errors.IO(err, "stat", dest)
		}
		if exists {
			return "", errors.WithContext(
				errors.New(errors.CodeInvalidInput, "destination already exists"),
				"path", dest,
			)
		}
	}

	stats, err := u.extract(archivePath, dest)
	if err != nil {
		if owned {
			u.cleanup(dest)
		}
		return "", err
	}

	u.metrics.ObserveExtract(stats.Entries, stats.Bytes)
	u.logger.Debug("extracted archive",
		"archive", archivePath,
		"dest", dest,
		"files", stats.Files,
		"dirs", stats.Dirs,
		"bytes", stats.Bytes,
	)
	return dest, nil
}

// ExtractToTemp unpacks the archive into a fresh temporary directory.
func (u *Util) ExtractToTemp(archivePath string) (string, error) {
	return u.Extract(archivePath, "")
}

func (u *Util) extract(archivePath, dest string) (archive.Stats, error) {
	a, err := archive.Open(u.local, archivePath)
	if err != nil {
		return archive.Stats{}, err
	}
	defer func() { _ = a.Close() }()

	return archive.Extract(a, u.local, dest, u.extractOpts)
}

func (u *Util) tempDirectory() (string, error) {
	tfs, ok := u.local.(core.TempFS)
	if !ok {
		return "", errors.Wrap(core.ErrUnsupported, errors.CodeInvalidConfig,
			"local filesystem cannot allocate temporary directories")
	}
	dir, err := tfs.TempDir(u.tempDir, tempPattern)
	if err != nil {
		return "", errors.IO(err, "mkdtemp", u.tempDir)
	}
	return dir, nil
}

// DeleteDirectory removes a local tree. A missing path is not an error.
func (u *Util) DeleteDirectory(p string) error {
	if p == "" {
		return errors.MissingArgument("path")
	}
	if err := u.local.RemoveAll(p); err != nil {
		return errors.IO(err, "remove", p)
	}
	return nil
}

// cleanup removes a temporary directory. Failures are logged so they never
// mask the outcome of the operation that owned the directory.
func (u *Util) cleanup(dir string) {
	if err := u.DeleteDirectory(dir); err != nil {
		u.logger.Warn("failed to remove temporary directory", "path", dir, "error", err)
	}
}
