// Package pathutil converts filesystem paths to object keys.
package pathutil

import (
	"path"
	"strings"
)

// Normalize cleans p, converts backslashes and trims surrounding slashes.
// The bucket root is returned as ".".
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return "."
	}
	return p
}

// NormalizePrefix normalizes a key prefix. The empty prefix stays empty.
func NormalizePrefix(prefix string) string {
	if p := Normalize(prefix); p != "." {
		return p
	}
	return ""
}

// JoinPath joins prefix and name into an object key. The bucket root maps to
// the prefix itself.
func JoinPath(prefix, name string) string {
	name = Normalize(name)
	switch {
	case name == ".":
		return prefix
	case prefix == "":
		return name
	default:
		return prefix + "/" + name
	}
}

// DirKey returns the key of the directory marker for key, which is also the
// listing prefix of its children. The root maps to "".
func DirKey(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}

// Parents returns every ancestor of key from the top down, key excluded.
func Parents(key string) []string {
	var parents []string
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			parents = append(parents, key[:i])
		}
	}
	return parents
}
