// Package testutil builds archives and sample trees for tests.
package testutil

import (
	"archive/tar"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Entry describes one archive member. A name ending in "/" is written as an
// explicit directory entry.
type Entry struct {
	Name    string
	Content string
}

// Dir returns a directory entry for name.
func Dir(name string) Entry {
	return Entry{Name: strings.TrimSuffix(name, "/") + "/"}
}

// File returns a file entry for name holding content.
func File(name, content string) Entry {
	return Entry{Name: name, Content: content}
}

func (e Entry) isDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// ZipBytes writes entries, in order, to a zip archive.
func ZipBytes(entries ...Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: time.Unix(0, 0)}
		if e.isDir() {
			hdr.Method = zip.Store
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("failed to write zip header for %s: %w", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Content)); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// TarGzBytes writes entries, in order, to a gzip-compressed tar archive.
func TarGzBytes(entries ...Entry) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:    e.Name,
			Mode:    0o644,
			Size:    int64(len(e.Content)),
			ModTime: time.Unix(0, 0),
		}
		if e.isDir() {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("failed to write tar header for %s: %w", e.Name, err)
		}
		if !e.isDir() {
			if _, err := tw.Write([]byte(e.Content)); err != nil {
				return nil, fmt.Errorf("failed to write tar entry %s: %w", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// TarBytesWithHeader writes a single raw tar header, used to build archives
// holding entry types extraction must reject.
func TarBytesWithHeader(hdr *tar.Header) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, fmt.Errorf("failed to write tar header for %s: %w", hdr.Name, err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}
