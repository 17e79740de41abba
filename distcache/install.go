package distcache

import (
	"path"
	"strings"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/internal/metrics"
	"github.com/jmgilman/envstage/jobconf"
)

// InstallRequest describes an environment to install.
type InstallRequest struct {
	// Archive is the local path of the environment archive.
	Archive string
	// FS is the distributed filesystem to install into.
	FS core.DistributedFS
	// Destination is the installation root on FS.
	Destination string
	// BigDataPlugin is the local path of the required plugin folder.
	BigDataPlugin string
	// AdditionalPlugins is a comma-separated list of plugin names resolved
	// against the plugin base folders.
	AdditionalPlugins string
	// Conf, when set, receives the job registrations for the installed
	// environment.
	Conf jobconf.Configuration
}

func (r InstallRequest) validate() error {
	switch {
	case r.Archive == "":
		return errors.MissingArgument("archive")
	case r.Destination == "":
		return errors.MissingArgument("destination")
	case r.BigDataPlugin == "":
		return errors.MissingArgument("big data plugin")
	case r.FS == nil:
		return errors.MissingArgument("filesystem")
	}
	return nil
}

// InstallEnvironment installs a fresh environment at req.Destination,
// replacing anything already there. The old root is removed and the lock
// marker placed in the new, empty root before anything is staged; the
// archive's top-level entries are then staged beneath it one by one, so
// the root itself is never replaced while locked. The marker is removed
// only once every plugin is staged, so a failed install leaves it behind.
// The temporary directory is removed on every path.
func (u *Util) InstallEnvironment(req InstallRequest) error {
	if err := req.validate(); err != nil {
		return err
	}

	dest := req.Destination
	u.logger.Info("installing environment", "archive", req.Archive, "dest", dest)

	extracted, err := u.ExtractToTemp(req.Archive)
	if err != nil {
		return err
	}
	defer u.cleanup(extracted)

	if err := u.resetRoot(req.FS, dest); err != nil {
		return err
	}
	if err := u.stageContents(extracted, req.FS, dest); err != nil {
		return err
	}

	libDir := path.Join(dest, LibDirName)
	if err := u.ensureDir(req.FS, libDir); err != nil {
		return err
	}
	if err := u.stageConfigLibs(req.FS, libDir); err != nil {
		return err
	}

	pluginsDir := path.Join(dest, PluginsDirName)
	if err := u.ensureDir(req.FS, pluginsDir); err != nil {
		return err
	}
	if err := u.StageForCache(req.BigDataPlugin, req.FS, path.Join(pluginsDir, BigDataPluginFolderName), true); err != nil {
		return err
	}
	if strings.TrimSpace(req.AdditionalPlugins) != "" {
		if err := u.StagePluginsForCache(req.FS, pluginsDir, req.AdditionalPlugins); err != nil {
			return err
		}
	}

	if req.Conf != nil {
		if err := u.ConfigureWithEnvironment(req.Conf, req.FS, dest); err != nil {
			return err
		}
	}

	if err := Unlock(req.FS, dest); err != nil {
		return err
	}
	u.logger.Info("installed environment", "dest", dest)
	return nil
}

// EnsureEnvironment installs the environment unless a usable one is
// already present, then registers it in req.Conf. It reports whether an
// install took place. A root that carries a lock marker is reported as a
// conflict; clear a stale marker with Unlock.
func (u *Util) EnsureEnvironment(req InstallRequest) (bool, error) {
	if err := req.validate(); err != nil {
		return false, err
	}

	installed, err := IsInstalledAt(req.FS, req.Destination)
	if err != nil {
		return false, err
	}
	if installed {
		u.metrics.ObserveInstall(metrics.ResultSkipped)
		u.logger.Info("environment already installed", "dest", req.Destination)
		if req.Conf != nil {
			return false, u.ConfigureWithEnvironment(req.Conf, req.FS, req.Destination)
		}
		return false, nil
	}

	locked, err := IsLocked(req.FS, req.Destination)
	if err != nil {
		return false, err
	}
	if locked {
		u.metrics.ObserveInstall(metrics.ResultLocked)
		return false, errors.WithContext(
			errors.Newf(errors.CodeConflict, "installation in progress at %s", req.Destination),
			"lock", LockFileAt(req.Destination),
		)
	}

	if err := u.InstallEnvironment(req); err != nil {
		u.metrics.ObserveInstall(metrics.ResultFailed)
		return false, err
	}
	u.metrics.ObserveInstall(metrics.ResultInstalled)
	return true, nil
}

// resetRoot removes dest, recreates it with the staged attributes and
// places the lock marker in it.
func (u *Util) resetRoot(dfs core.DistributedFS, dest string) error {
	exists, err := dfs.Exists(dest)
	if err != nil {
		return errors.IO(err, "stat", dest)
	}
	if exists {
		if err := dfs.RemoveAll(dest); err != nil {
			return errors.IO(err, "remove", dest)
		}
	}
	if err := u.ensureDir(dfs, dest); err != nil {
		return err
	}
	return Lock(dfs, dest)
}

// stageContents stages every top-level entry of the local directory src
// into dest. An entry named like the lock marker is skipped.
func (u *Util) stageContents(src string, dfs core.DistributedFS, dest string) error {
	entries, err := u.local.ReadDir(src)
	if err != nil {
		return errors.IO(err, "readdir", src)
	}
	for _, e := range entries {
		if e.Name() == LockFileName {
			continue
		}
		if err := u.StageForCache(path.Join(src, e.Name()), dfs, path.Join(dest, e.Name()), true); err != nil {
			return err
		}
	}
	return nil
}

// ensureDir creates dir on dfs with the staged mode and replication.
func (u *Util) ensureDir(dfs core.DistributedFS, dir string) error {
	if err := dfs.MkdirAll(dir, StagedMode); err != nil {
		return errors.IO(err, "mkdir", dir)
	}
	if err := dfs.SetPermission(dir, StagedMode); err != nil {
		return errors.IO(err, "chmod", dir)
	}
	if err := dfs.SetReplication(dir, u.replication); err != nil {
		return errors.IO(err, "setrep", dir)
	}
	return nil
}

// stageConfigLibs stages every file of the configuration library folder
// into libDir.
func (u *Util) stageConfigLibs(dfs core.DistributedFS, libDir string) error {
	if u.configLibDir == "" {
		return nil
	}

	entries, err := u.local.ReadDir(u.configLibDir)
	if err != nil {
		if errors.Is(err, core.ErrNotExist) {
			return errors.WithContext(
				errors.Newf(errors.CodeNotFound, "configuration library folder does not exist: %s", u.configLibDir),
				"path", u.configLibDir,
			)
		}
		return errors.IO(err, "readdir", u.configLibDir)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src := path.Join(u.configLibDir, e.Name())
		if err := u.StageForCache(src, dfs, path.Join(libDir, e.Name()), true); err != nil {
			return err
		}
	}
	return nil
}

// StagePluginsForCache stages each plugin named in the comma-separated
// plugins list into pluginsDir/<name>. Names are resolved against the
// plugin base folders.
func (u *Util) StagePluginsForCache(dfs core.DistributedFS, pluginsDir, plugins string) error {
	if dfs == nil {
		return errors.MissingArgument("filesystem")
	}
	if pluginsDir == "" {
		return errors.MissingArgument("plugins directory")
	}

	var names []string
	for _, name := range strings.Split(plugins, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return errors.New(errors.CodeInvalidInput, "no plugins to stage")
	}

	for _, name := range names {
		folder, found, err := u.resolver.Find(name)
		if err != nil {
			return err
		}
		if !found {
			return errors.WithContext(
				errors.Newf(errors.CodeNotFound, "plugin folder not found: %s", name),
				"plugin", name,
			)
		}
		if err := u.StageForCache(folder, dfs, path.Join(pluginsDir, name), true); err != nil {
			return err
		}
	}
	return nil
}

// FindPluginFolder returns the first plugin base folder entry matching
// name. A plugin found nowhere yields ("", false, nil).
func (u *Util) FindPluginFolder(name string) (string, bool, error) {
	return u.resolver.Find(name)
}
