package core

import (
	"io"
	"io/fs"
	"path"
	"strings"
)

// CopyTree copies srcPath from src to dstPath on dst.
//
// A file is copied to dstPath itself. A directory is mirrored recursively,
// empty directories included, so that dstPath ends up with the same layout
// as srcPath. Existing files at the destination are overwritten; nothing is
// removed.
func CopyTree(src FS, srcPath string, dst FS, dstPath string) error {
	info, err := src.Stat(srcPath)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		if dir := path.Dir(dstPath); dir != "." && dir != "/" {
			if err := dst.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		return copyFile(src, srcPath, dst, dstPath)
	}

	root := path.Clean(srcPath)
	return src.Walk(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		target := path.Join(dstPath, relPath(root, p))
		if d.IsDir() {
			return dst.MkdirAll(target, 0o755)
		}
		return copyFile(src, p, dst, target)
	})
}

// Summarize walks name and counts what it finds.
func Summarize(fsys FS, name string) (ContentSummary, error) {
	var summary ContentSummary
	err := fsys.Walk(name, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			summary.DirectoryCount++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		summary.FileCount++
		summary.Length += info.Size()
		return nil
	})
	if err != nil {
		return ContentSummary{}, err
	}
	return summary, nil
}

func copyFile(src FS, srcPath string, dst FS, dstPath string) (err error) {
	in, err := src.Open(srcPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := dst.Create(dstPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// relPath returns p relative to root using slash separators.
func relPath(root, p string) string {
	p = path.Clean(p)
	if p == root {
		return ""
	}
	if root == "/" || root == "." {
		return strings.TrimPrefix(p, "/")
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
}
