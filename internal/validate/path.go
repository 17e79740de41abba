// Package validate checks archive entry names before they are materialized
// on a filesystem.
package validate

import (
	"fmt"
	"path"
	"strings"
)

// EntryValidator rejects entry names that could escape the extraction root
// or that cannot be represented on every supported filesystem.
type EntryValidator struct {
	// AllowHidden permits path components starting with a dot. Runtime
	// bundles routinely carry dot-files, so extraction enables it.
	AllowHidden bool
}

// NewEntryValidator returns a validator that permits hidden files.
func NewEntryValidator() *EntryValidator {
	return &EntryValidator{AllowHidden: true}
}

// Validate returns nil if name is a safe relative entry name.
func (v *EntryValidator) Validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty path")
	}
	if isAbsolute(name) {
		return fmt.Errorf("absolute path not allowed: %s", name)
	}
	if hasEncodedTraversal(name) {
		return fmt.Errorf("encoded path traversal detected: %s", name)
	}
	if hasTraversal(name) {
		return fmt.Errorf("path traversal detected: %s", name)
	}
	for _, r := range name {
		if r == 0 {
			return fmt.Errorf("NUL byte detected in path: %s", name)
		}
		if r < 32 || r == 127 {
			return fmt.Errorf("control character detected in path: %s (U+%04X)", name, r)
		}
	}
	if !v.AllowHidden && isHidden(name) {
		return fmt.Errorf("hidden files not allowed: %s", name)
	}
	return nil
}

// IsSafe reports whether Validate accepts name.
func (v *EntryValidator) IsSafe(name string) bool {
	return v.Validate(name) == nil
}

// Clean normalizes a validated entry name to a slash-separated relative
// path without a trailing slash. Backslashes written by some zip tools are
// treated as separators.
func Clean(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func isAbsolute(name string) bool {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return true
	}
	// Windows drive letters.
	if len(name) >= 2 && name[1] == ':' {
		c := name[0]
		return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
	}
	return false
}

func hasEncodedTraversal(name string) bool {
	lower := strings.ToLower(name)
	for _, variant := range []string{
		"..%2f", "..%5c",
		"%2e%2e%2f", "%2e%2e%5c",
		"%2e%2e/", "%2e%2e\\",
		"..%c0%af", "..%c1%9c",
	} {
		if strings.Contains(lower, variant) {
			return true
		}
	}
	return false
}

func hasTraversal(name string) bool {
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	for _, part := range strings.Split(Clean(name), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
