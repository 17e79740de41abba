package minio

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/fs/minio/internal/errs"
	"github.com/jmgilman/envstage/fs/minio/internal/pathutil"
)

// Create creates the named file for writing. The object is uploaded when
// the file is closed, or streamed once it grows past the multipart
// threshold.
func (m *MinioFS) Create(name string) (core.File, error) {
	return newFileWrite(m, m.joinPath(name), name), nil
}

// OpenFile opens the named file. Only O_RDONLY and combinations of
// O_WRONLY, O_CREATE and O_TRUNC are supported.
func (m *MinioFS) OpenFile(name string, flag int, _ fs.FileMode) (core.File, error) {
	for _, unsupported := range []struct {
		flag int
		name string
	}{
		{os.O_RDWR, "O_RDWR"},
		{os.O_APPEND, "O_APPEND"},
		{os.O_EXCL, "O_EXCL"},
		{os.O_SYNC, "O_SYNC"},
	} {
		if flag&unsupported.flag != 0 {
			return nil, errs.PathErrorf("open", name, "%w: %s not supported in S3", core.ErrUnsupported, unsupported.name)
		}
	}

	if flag&(os.O_WRONLY|os.O_CREATE) != 0 {
		return m.Create(name)
	}
	return newStreamingFile(context.Background(), m, m.joinPath(name), name)
}

// WriteFile writes data to the named file.
func (m *MinioFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	_, err := m.client.PutObject(context.Background(), m.bucket, m.joinPath(name),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return errs.Op("writefile", name, err)
}

// putMarker writes a directory marker with optional user metadata.
func (m *MinioFS) putMarker(ctx context.Context, dirKey string, meta map[string]string) error {
	_, err := m.client.PutObject(ctx, m.bucket, dirKey, bytes.NewReader(nil), 0,
		minio.PutObjectOptions{ContentType: "application/x-directory", UserMetadata: meta})
	return errs.Translate(err)
}

// Mkdir creates a single directory marker. The parent must exist.
func (m *MinioFS) Mkdir(name string, _ fs.FileMode) error {
	ctx := context.Background()
	if _, err := m.resolve(ctx, "mkdir", name); err == nil {
		return errs.PathError("mkdir", name, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	norm := pathutil.Normalize(name)
	if i := strings.LastIndex(norm, "/"); i > 0 {
		parent, err := m.resolve(ctx, "mkdir", norm[:i])
		if err != nil {
			return err
		}
		if !parent.isDir {
			return errs.PathErrorf("mkdir", name, "parent is not a directory")
		}
	}

	return errs.PathError("mkdir", name, m.putMarker(ctx, pathutil.DirKey(m.joinPath(name)), nil))
}

// MkdirAll creates directory markers for path and any missing parents.
// Existing markers, and the metadata they carry, are left alone.
func (m *MinioFS) MkdirAll(path string, _ fs.FileMode) error {
	norm := pathutil.Normalize(path)
	if norm == "." {
		return nil
	}

	ctx := context.Background()
	for _, dir := range append(pathutil.Parents(norm), norm) {
		obj, err := m.resolve(ctx, "mkdir", dir)
		switch {
		case err == nil && !obj.isDir:
			return errs.PathErrorf("mkdir", dir, "%w: file exists", fs.ErrExist)
		case err == nil && obj.marker:
			continue
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
		if err := m.putMarker(ctx, pathutil.DirKey(m.joinPath(dir)), nil); err != nil {
			return errs.PathError("mkdir", dir, err)
		}
	}
	return nil
}

// Remove removes a file or an empty directory. Removing a missing path
// succeeds, as deletes in S3 are idempotent.
func (m *MinioFS) Remove(name string) error {
	ctx := context.Background()
	obj, err := m.resolve(ctx, "remove", name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	if obj.isDir {
		nonEmpty, err := m.hasChildren(ctx, obj.key)
		if err != nil {
			return errs.PathError("remove", name, err)
		}
		if nonEmpty {
			return errs.PathErrorf("remove", name, "directory not empty")
		}
		if !obj.marker {
			return nil
		}
	}

	err = m.client.RemoveObject(ctx, m.bucket, obj.key, minio.RemoveObjectOptions{})
	return errs.Op("remove", name, err)
}

// RemoveAll removes path, its marker and every object below it.
func (m *MinioFS) RemoveAll(path string) error {
	key := m.joinPath(path)
	dirKey := pathutil.DirKey(key)
	ctx := context.Background()

	objectsCh := make(chan minio.ObjectInfo, 100)
	var listErr error
	go func() {
		defer close(objectsCh)
		if key != "" {
			objectsCh <- minio.ObjectInfo{Key: key}
		}
		for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
			Prefix:    dirKey,
			Recursive: true,
		}) {
			if object.Err != nil {
				listErr = object.Err
				return
			}
			objectsCh <- object
		}
	}()

	var firstErr error
	for rerr := range m.client.RemoveObjects(ctx, m.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil && firstErr == nil {
			firstErr = rerr.Err
		}
	}

	if listErr != nil {
		return errs.Op("removeall", path, listErr)
	}
	return errs.Op("removeall", path, firstErr)
}

// Rename moves oldpath to newpath by copy and delete. It is not atomic: a
// failure part way leaves objects under both names.
func (m *MinioFS) Rename(oldpath, newpath string) error {
	ctx := context.Background()
	obj, err := m.resolve(ctx, "rename", oldpath)
	if err != nil {
		return err
	}

	oldKey, newKey := m.joinPath(oldpath), m.joinPath(newpath)
	if !obj.isDir {
		_, err := m.client.CopyObject(ctx,
			minio.CopyDestOptions{Bucket: m.bucket, Object: newKey},
			minio.CopySrcOptions{Bucket: m.bucket, Object: oldKey})
		if err != nil {
			return errs.Op("rename", oldpath, err)
		}
		err = m.client.RemoveObject(ctx, m.bucket, oldKey, minio.RemoveObjectOptions{})
		return errs.Op("rename", oldpath, err)
	}

	copied, err := m.parallelCopy(ctx, pathutil.DirKey(oldKey), pathutil.DirKey(newKey))
	if err != nil {
		return errs.Op("rename", oldpath, err)
	}

	toDelete := make(chan minio.ObjectInfo, len(copied))
	for _, key := range copied {
		toDelete <- minio.ObjectInfo{Key: key}
	}
	close(toDelete)

	for rerr := range m.client.RemoveObjects(ctx, m.bucket, toDelete, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			return errs.Op("rename", oldpath, rerr.Err)
		}
	}
	return nil
}

// parallelCopy copies every object below oldPrefix to newPrefix using a
// bounded worker pool and returns the source keys that were copied.
func (m *MinioFS) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.concurrency)

	var mu sync.Mutex
	var copied []string

	for object := range m.client.ListObjects(egCtx, m.bucket, minio.ListObjectsOptions{
		Prefix:    oldPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			_ = eg.Wait()
			return copied, object.Err
		}

		srcKey := object.Key
		eg.Go(func() error {
			dstKey := newPrefix + strings.TrimPrefix(srcKey, oldPrefix)
			_, err := m.client.CopyObject(egCtx,
				minio.CopyDestOptions{Bucket: m.bucket, Object: dstKey},
				minio.CopySrcOptions{Bucket: m.bucket, Object: srcKey})
			if err != nil {
				return fmt.Errorf("copy object %s to %s: %w", srcKey, dstKey, err)
			}

			mu.Lock()
			copied = append(copied, srcKey)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return copied, err
	}
	return copied, nil
}
