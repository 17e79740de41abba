package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/fs/minio/internal/errs"
	"github.com/jmgilman/envstage/fs/minio/internal/types"
)

// File is a write handle for a MinIO object. Writes are buffered until the
// multipart threshold is crossed, after which they stream through a pipe to
// a background PutObject. Nothing is visible in the bucket before Close.
type File struct {
	fs   *MinioFS
	key  string
	name string

	buffer       *bytes.Buffer
	pipeW        *io.PipeWriter
	putRes       chan error
	bytesWritten int64
	closed       bool
}

func newFileWrite(mfs *MinioFS, key, name string) *File {
	return &File{
		fs:     mfs,
		key:    key,
		name:   name,
		buffer: new(bytes.Buffer),
	}
}

// Read is not supported on write handles.
func (f *File) Read(_ []byte) (int, error) {
	return 0, errs.PathError("read", f.name, fs.ErrInvalid)
}

// Write appends p to the object.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, errs.PathError("write", f.name, fs.ErrClosed)
	}

	if f.pipeW == nil && int64(f.buffer.Len()+len(p)) <= f.fs.multipartThreshold {
		n, _ := f.buffer.Write(p)
		f.bytesWritten += int64(n)
		return n, nil
	}

	if f.pipeW == nil {
		if err := f.startStreaming(); err != nil {
			return 0, err
		}
	}

	n, err := f.pipeW.Write(p)
	f.bytesWritten += int64(n)
	if err != nil {
		return n, errs.PathError("write", f.name, err)
	}
	return n, nil
}

// startStreaming switches from buffering to a background upload and flushes
// what was buffered so far.
// nolint:contextcheck // io.Writer.Write cannot accept a context
func (f *File) startStreaming() error {
	pr, pw := io.Pipe()
	f.pipeW = pw
	f.putRes = make(chan error, 1)

	go func() {
		_, err := f.fs.client.PutObject(context.Background(), f.fs.bucket, f.key, pr, -1,
			minio.PutObjectOptions{ContentType: "application/octet-stream"})
		_ = pr.CloseWithError(err)
		f.putRes <- errs.Translate(err)
		close(f.putRes)
	}()

	if f.buffer.Len() > 0 {
		if _, err := f.pipeW.Write(f.buffer.Bytes()); err != nil {
			return errs.PathError("write", f.name, err)
		}
	}
	f.buffer = nil
	return nil
}

// Stat reports the bytes written so far.
func (f *File) Stat() (fs.FileInfo, error) {
	return types.NewFileInfo(path.Base(f.name), f.bytesWritten, time.Now(), types.DefaultFileMode), nil
}

// Close uploads the buffered contents, or waits for the streaming upload to
// finish. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.pipeW != nil {
		_ = f.pipeW.Close()
		return errs.PathError("close", f.name, <-f.putRes)
	}

	_, err := f.fs.client.PutObject(context.Background(), f.fs.bucket, f.key,
		bytes.NewReader(f.buffer.Bytes()), int64(f.buffer.Len()),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return errs.Op("close", f.name, err)
}

// Name returns the name of the file as provided to Create.
func (f *File) Name() string {
	return f.name
}

// streamingFile reads an object without buffering it in memory.
type streamingFile struct {
	fs     *MinioFS
	key    string
	name   string
	obj    *minio.Object
	info   minio.ObjectInfo
	offset int64
	closed bool
}

func newStreamingFile(ctx context.Context, mfs *MinioFS, key, name string) (*streamingFile, error) {
	info, err := mfs.client.StatObject(ctx, mfs.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, errs.Op("open", name, err)
	}

	obj, err := mfs.client.GetObject(ctx, mfs.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.Op("open", name, err)
	}

	return &streamingFile{fs: mfs, key: key, name: name, obj: obj, info: info}, nil
}

// Read reads from the object stream.
func (f *streamingFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, errs.PathError("read", f.name, fs.ErrClosed)
	}
	n, err := f.obj.Read(p)
	f.offset += int64(n)
	if n > 0 && errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// Close releases the object stream.
func (f *streamingFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.obj.Close()
}

// Stat returns the object's size and modification time.
func (f *streamingFile) Stat() (fs.FileInfo, error) {
	return object{key: f.key, info: f.info}.fileInfo(f.name), nil
}

// Name returns the name of the file.
func (f *streamingFile) Name() string {
	return f.name
}

// Write is not supported on read handles.
func (f *streamingFile) Write(_ []byte) (int, error) {
	return 0, errs.PathError("write", f.name, fs.ErrInvalid)
}

// Seek reopens the object with a range request at the new offset.
// nolint:contextcheck // io.Seeker cannot accept a context
func (f *streamingFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, errs.PathError("seek", f.name, fs.ErrClosed)
	}

	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = f.offset + offset
	case io.SeekEnd:
		next = f.info.Size + offset
	default:
		return 0, errs.PathError("seek", f.name, fs.ErrInvalid)
	}
	if next < 0 {
		return 0, errs.PathError("seek", f.name, fs.ErrInvalid)
	}
	if next == f.offset {
		return next, nil
	}

	opts := minio.GetObjectOptions{}
	if next > 0 {
		if err := opts.SetRange(next, 0); err != nil {
			return 0, errs.PathError("seek", f.name, err)
		}
	}
	obj, err := f.fs.client.GetObject(context.Background(), f.fs.bucket, f.key, opts)
	if err != nil {
		return 0, errs.Op("seek", f.name, err)
	}

	_ = f.obj.Close()
	f.obj = obj
	f.offset = next
	return next, nil
}

// ReadAt reads len(p) bytes at off with a dedicated range request, leaving
// the stream position untouched. Archive readers rely on it.
// nolint:contextcheck // io.ReaderAt cannot accept a context
func (f *streamingFile) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, errs.PathError("readat", f.name, fs.ErrClosed)
	}
	if off < 0 {
		return 0, errs.PathError("readat", f.name, fs.ErrInvalid)
	}
	if off >= f.info.Size {
		return 0, io.EOF
	}

	end := off + int64(len(p)) - 1
	if end >= f.info.Size {
		end = f.info.Size - 1
	}
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return 0, errs.PathError("readat", f.name, err)
	}

	obj, err := f.fs.client.GetObject(context.Background(), f.fs.bucket, f.key, opts)
	if err != nil {
		return 0, errs.Op("readat", f.name, err)
	}
	defer func() { _ = obj.Close() }()

	n, err := io.ReadFull(obj, p[:end-off+1])
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

// Compile-time interface checks.
var (
	_ core.File   = (*File)(nil)
	_ core.File   = (*streamingFile)(nil)
	_ io.Seeker   = (*streamingFile)(nil)
	_ io.ReaderAt = (*streamingFile)(nil)
)
