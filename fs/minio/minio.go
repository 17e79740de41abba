// Package minio provides a core.DistributedFS backed by MinIO or any
// S3-compatible object store.
//
// Files are objects. Directories are zero-byte marker objects whose key ends
// in "/"; a prefix that has children but no marker is still reported as a
// directory. Permission bits and replication factors are kept as object user
// metadata, on the marker for directories, so they survive across processes.
package minio

import (
	"context"
	"io"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/fs/minio/internal/errs"
	"github.com/jmgilman/envstage/fs/minio/internal/pathutil"
	"github.com/jmgilman/envstage/fs/minio/internal/types"
)

// User metadata keys, in canonical header form without the X-Amz-Meta- prefix.
const (
	metaMode        = "Envstage-Mode"
	metaReplication = "Envstage-Replication"
)

// MinioFS implements core.DistributedFS for MinIO/S3-compatible storage.
//
//nolint:revive // MinioFS matches the LocalFS/MemoryFS naming of sibling providers
type MinioFS struct {
	client             *minio.Client
	bucket             string
	prefix             string
	multipartThreshold int64
	concurrency        int
	defaultReplication int16
}

// NewMinIO creates a MinIO-backed filesystem.
func NewMinIO(cfg Config) (*MinioFS, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to create minio client")
		}
	}

	m := &MinioFS{
		client:             client,
		bucket:             cfg.Bucket,
		prefix:             pathutil.NormalizePrefix(cfg.Prefix),
		multipartThreshold: cfg.MultipartThreshold,
		concurrency:        cfg.MaxConcurrency,
		defaultReplication: cfg.DefaultReplication,
	}
	if m.multipartThreshold <= 0 {
		m.multipartThreshold = 5 * 1024 * 1024
	}
	if m.concurrency <= 0 {
		m.concurrency = 10
	}
	if m.defaultReplication == 0 {
		m.defaultReplication = 1
	}
	return m, nil
}

// joinPath maps a filesystem path to its object key.
func (m *MinioFS) joinPath(name string) string {
	return pathutil.JoinPath(m.prefix, name)
}

// object describes what a key resolves to.
type object struct {
	key    string // object holding metadata: the file itself or the dir marker
	isDir  bool
	marker bool // isDir and a marker object exists
	info   minio.ObjectInfo
}

// resolve determines whether name is a file, a directory or missing.
func (m *MinioFS) resolve(ctx context.Context, op, name string) (object, error) {
	key := m.joinPath(name)
	if pathutil.Normalize(name) == "." {
		obj := object{key: pathutil.DirKey(key), isDir: true}
		if key != "" {
			if info, err := m.client.StatObject(ctx, m.bucket, obj.key, minio.StatObjectOptions{}); err == nil {
				obj.marker, obj.info = true, info
			}
		}
		return obj, nil
	}

	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return object{key: key, info: info}, nil
	}
	if !errors.Is(errs.Translate(err), fs.ErrNotExist) {
		return object{}, errs.Op(op, name, err)
	}

	dirKey := pathutil.DirKey(key)
	info, err = m.client.StatObject(ctx, m.bucket, dirKey, minio.StatObjectOptions{})
	if err == nil {
		return object{key: dirKey, isDir: true, marker: true, info: info}, nil
	}
	if !errors.Is(errs.Translate(err), fs.ErrNotExist) {
		return object{}, errs.Op(op, name, err)
	}

	ok, err := m.hasChildren(ctx, dirKey)
	if err != nil {
		return object{}, errs.PathError(op, name, err)
	}
	if !ok {
		return object{}, errs.PathError(op, name, fs.ErrNotExist)
	}
	return object{key: dirKey, isDir: true}, nil
}

// hasChildren reports whether any object lives below dirKey.
func (m *MinioFS) hasChildren(ctx context.Context, dirKey string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:  dirKey,
		MaxKeys: 2,
	}) {
		if obj.Err != nil {
			return false, errs.Translate(obj.Err)
		}
		if obj.Key != dirKey {
			return true, nil
		}
	}
	return false, nil
}

// userMeta looks up a user metadata value regardless of key casing.
func userMeta(info minio.ObjectInfo, key string) (string, bool) {
	for k, v := range info.UserMetadata {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func (o object) perm() fs.FileMode {
	if v, ok := userMeta(o.info, metaMode); ok {
		if mode, err := strconv.ParseUint(v, 8, 32); err == nil {
			return fs.FileMode(mode).Perm()
		}
	}
	if o.isDir {
		return types.DefaultDirMode
	}
	return types.DefaultFileMode
}

func (o object) fileInfo(name string) fs.FileInfo {
	base := path.Base(pathutil.Normalize(name))
	if o.isDir {
		return types.NewDirInfo(base, o.info.LastModified, o.perm())
	}
	return types.NewFileInfo(base, o.info.Size, o.info.LastModified, o.perm())
}

// Open opens the named file for streaming reads.
func (m *MinioFS) Open(name string) (fs.File, error) {
	return newStreamingFile(context.Background(), m, m.joinPath(name), name)
}

// Stat returns file information for the named file or directory.
func (m *MinioFS) Stat(name string) (fs.FileInfo, error) {
	obj, err := m.resolve(context.Background(), "stat", name)
	if err != nil {
		return nil, err
	}
	return obj.fileInfo(name), nil
}

// ReadDir lists the immediate children of a directory sorted by name.
func (m *MinioFS) ReadDir(name string) ([]fs.DirEntry, error) {
	ctx := context.Background()
	obj, err := m.resolve(ctx, "readdir", name)
	if err != nil {
		return nil, err
	}
	if !obj.isDir {
		return nil, errs.PathErrorf("readdir", name, "not a directory")
	}

	entries, err := m.list(ctx, obj.key)
	if err != nil {
		return nil, errs.PathError("readdir", name, err)
	}
	return entries, nil
}

// list returns the immediate children of dirKey.
func (m *MinioFS) list(ctx context.Context, dirKey string) ([]fs.DirEntry, error) {
	var entries []fs.DirEntry
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix: dirKey,
	}) {
		if obj.Err != nil {
			return nil, errs.Translate(obj.Err)
		}
		if obj.Key == dirKey {
			continue
		}

		rel := strings.TrimPrefix(obj.Key, dirKey)
		isDir := strings.HasSuffix(rel, "/")
		rel = strings.TrimSuffix(rel, "/")
		if rel == "" {
			continue
		}
		entries = append(entries, types.NewDirEntry(rel, isDir, obj.Size, obj.LastModified))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// ReadFile reads the named file and returns the contents.
func (m *MinioFS) ReadFile(name string) ([]byte, error) {
	f, err := newStreamingFile(context.Background(), m, m.joinPath(name), name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, f.info.Size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, errs.PathError("readfile", name, err)
	}
	return buf, nil
}

// Exists reports whether the named file or directory exists.
func (m *MinioFS) Exists(name string) (bool, error) {
	_, err := m.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Walk visits root and every path below it in lexical order.
func (m *MinioFS) Walk(root string, walkFn fs.WalkDirFunc) error {
	ctx := context.Background()
	obj, err := m.resolve(ctx, "walk", root)
	if err != nil {
		err = walkFn(root, nil, err)
	} else {
		err = m.walk(ctx, root, obj.key, fs.FileInfoToDirEntry(obj.fileInfo(root)), walkFn)
	}
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (m *MinioFS) walk(ctx context.Context, name, key string, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	if err := walkFn(name, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, fs.SkipDir) && d.IsDir() {
			err = nil
		}
		return err
	}

	entries, err := m.list(ctx, key)
	if err != nil {
		if err = walkFn(name, d, err); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		childKey := key + entry.Name()
		if entry.IsDir() {
			childKey = pathutil.DirKey(childKey)
		}
		if err := m.walk(ctx, path.Join(name, entry.Name()), childKey, entry, walkFn); err != nil {
			if errors.Is(err, fs.SkipDir) {
				continue
			}
			return err
		}
	}
	return nil
}

// Chroot returns a filesystem rooted at dir.
func (m *MinioFS) Chroot(dir string) (core.FS, error) {
	sub := *m
	sub.prefix = m.joinPath(dir)
	return &sub, nil
}

// Type returns FSTypeRemote.
func (m *MinioFS) Type() core.FSType {
	return core.FSTypeRemote
}

// Compile-time interface check.
var _ core.DistributedFS = (*MinioFS)(nil)
