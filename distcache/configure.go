package distcache

import (
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/jobconf"
)

var jarPattern = regexp.MustCompile(`\.jar$`)

// ConfigureWithEnvironment registers the environment at root in conf:
// every jar directly under root/lib goes on the classpath, and the plugins
// folder is shipped as a single cache unit named "plugins". Individual
// plugin files are never registered.
func (u *Util) ConfigureWithEnvironment(conf jobconf.Configuration, dfs core.FS, root string) error {
	switch {
	case conf == nil:
		return errors.MissingArgument("configuration")
	case dfs == nil:
		return errors.MissingArgument("filesystem")
	case root == "":
		return errors.MissingArgument("root")
	}

	jars, err := u.FindDistributedFiles(dfs, path.Join(root, LibDirName), jarPattern)
	if err != nil {
		return err
	}
	u.registrar.AddCachedFilesToClasspath(conf, jars)
	u.registrar.AddCacheDirectory(conf, path.Join(root, PluginsDirName), PluginsDirName)

	u.logger.Debug("configured job with environment", "root", root, "jars", len(jars))
	return nil
}

// FindFiles lists root and everything below it on the local filesystem.
// With a non-empty extension only files with that extension are returned.
func (u *Util) FindFiles(root, extension string) ([]string, error) {
	if root == "" {
		return nil, errors.MissingArgument("root")
	}
	ext := ""
	if extension != "" {
		ext = "." + strings.TrimPrefix(extension, ".")
	}

	var found []string
	err := u.local.Walk(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ext == "" || (!d.IsDir() && path.Ext(p) == ext) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WithContext(
				errors.Newf(errors.CodeNotFound, "path does not exist: %s", root),
				"path", root,
			)
		}
		return nil, errors.IO(err, "walk", root)
	}
	return found, nil
}

// FindDistributedFiles lists p on dfs. A file is returned when its name
// matches; for a directory its immediate children whose names match are
// returned. A nil pattern matches everything.
func (u *Util) FindDistributedFiles(dfs core.FS, p string, pattern *regexp.Regexp) ([]string, error) {
	if dfs == nil {
		return nil, errors.MissingArgument("filesystem")
	}

	info, err := dfs.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WithContext(
				errors.Newf(errors.CodeNotFound, "path does not exist: %s", p),
				"path", p,
			)
		}
		return nil, errors.IO(err, "stat", p)
	}

	matches := func(name string) bool {
		return pattern == nil || pattern.MatchString(name)
	}

	if !info.IsDir() {
		if matches(path.Base(p)) {
			return []string{p}, nil
		}
		return nil, nil
	}

	entries, err := dfs.ReadDir(p)
	if err != nil {
		return nil, errors.IO(err, "readdir", p)
	}
	var found []string
	for _, e := range entries {
		if matches(e.Name()) {
			found = append(found, path.Join(p, e.Name()))
		}
	}
	return found, nil
}
