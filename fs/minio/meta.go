package minio

import (
	"context"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/fs/minio/internal/errs"
	"github.com/jmgilman/envstage/fs/minio/internal/pathutil"
)

// SetPermission records the permission bits of name in its user metadata.
func (m *MinioFS) SetPermission(name string, perm fs.FileMode) error {
	return m.setMeta("chmod", name, metaMode, strconv.FormatUint(uint64(perm.Perm()), 8))
}

// SetReplication records the replication factor of name. Object stores
// manage their own redundancy, so the value is informational.
func (m *MinioFS) SetReplication(name string, replication int16) error {
	if replication < 1 {
		return errs.PathError("setreplication", name, fs.ErrInvalid)
	}
	return m.setMeta("setreplication", name, metaReplication, strconv.Itoa(int(replication)))
}

// Replication returns the recorded replication factor of name, or the
// configured default when none was recorded.
func (m *MinioFS) Replication(name string) (int16, error) {
	obj, err := m.resolve(context.Background(), "replication", name)
	if err != nil {
		return 0, err
	}
	if v, ok := userMeta(obj.info, metaReplication); ok {
		if r, err := strconv.ParseInt(v, 10, 16); err == nil {
			return int16(r), nil
		}
	}
	return m.defaultReplication, nil
}

// setMeta merges one user metadata value into the object backing name.
// Directories without a marker get one.
func (m *MinioFS) setMeta(op, name, key, value string) error {
	ctx := context.Background()
	obj, err := m.resolve(ctx, op, name)
	if err != nil {
		return err
	}

	meta := make(map[string]string, len(obj.info.UserMetadata)+1)
	for k, v := range obj.info.UserMetadata {
		meta[http.CanonicalHeaderKey(k)] = v
	}
	meta[key] = value

	if obj.isDir && !obj.marker {
		return errs.PathError(op, name, m.putMarker(ctx, obj.key, meta))
	}

	// A self-copy with replaced metadata rewrites metadata in place.
	_, err = m.client.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket:          m.bucket,
			Object:          obj.key,
			UserMetadata:    meta,
			ReplaceMetadata: true,
		},
		minio.CopySrcOptions{Bucket: m.bucket, Object: obj.key})
	return errs.Op(op, name, err)
}

// ContentSummary counts files, directories and bytes at and below name.
// Directories are every marker plus every intermediate prefix.
func (m *MinioFS) ContentSummary(name string) (core.ContentSummary, error) {
	ctx := context.Background()
	obj, err := m.resolve(ctx, "contentsummary", name)
	if err != nil {
		return core.ContentSummary{}, err
	}
	if !obj.isDir {
		return core.ContentSummary{Length: obj.info.Size, FileCount: 1}, nil
	}

	summary := core.ContentSummary{DirectoryCount: 1}
	dirs := make(map[string]struct{})
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    obj.key,
		Recursive: true,
	}) {
		if object.Err != nil {
			return core.ContentSummary{}, errs.Op("contentsummary", name, object.Err)
		}

		rel := strings.TrimPrefix(object.Key, obj.key)
		if rel == "" {
			continue
		}
		for _, parent := range pathutil.Parents(strings.TrimSuffix(rel, "/")) {
			dirs[parent] = struct{}{}
		}
		if strings.HasSuffix(rel, "/") {
			dirs[strings.TrimSuffix(rel, "/")] = struct{}{}
			continue
		}
		summary.FileCount++
		summary.Length += object.Size
	}

	summary.DirectoryCount += int64(len(dirs))
	return summary, nil
}
