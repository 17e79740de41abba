// Package plugin locates plugin folders below a list of base folders.
package plugin

import (
	"io/fs"
	"path"
	"strings"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
)

// Resolver searches base folders, in order, for plugin directories.
type Resolver struct {
	fsys  core.FS
	bases []string
}

// NewResolver returns a Resolver over baseFolders on fsys. Blank entries
// are ignored.
func NewResolver(fsys core.FS, baseFolders []string) *Resolver {
	bases := make([]string, 0, len(baseFolders))
	for _, b := range baseFolders {
		if b = strings.TrimSpace(b); b != "" {
			bases = append(bases, b)
		}
	}
	return &Resolver{fsys: fsys, bases: bases}
}

// BaseFolders returns the folders searched, in order.
func (r *Resolver) BaseFolders() []string {
	return append([]string(nil), r.bases...)
}

// Find returns the first base/name that is a directory. Nested names such
// as "a/b" resolve to base/a/b. A name found nowhere yields ("", false, nil);
// a regular file at base/name is skipped.
func (r *Resolver) Find(name string) (string, bool, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return "", false, errors.MissingArgument("plugin name")
	}

	for _, base := range r.bases {
		candidate := path.Join(base, name)
		info, err := r.fsys.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", false, errors.IO(err, "stat", candidate)
		}
		if info.IsDir() {
			return candidate, true, nil
		}
	}
	return "", false, nil
}
