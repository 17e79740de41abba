package minio

import (
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/core"
)

func TestConfig_Validate(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds: credentials.NewStaticV4("key", "secret", ""),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing bucket",
			cfg:     Config{Client: client},
			wantErr: "bucket is required",
		},
		{
			name: "client only",
			cfg:  Config{Client: client, Bucket: "envs"},
		},
		{
			name:    "missing endpoint",
			cfg:     Config{Bucket: "envs", AccessKey: "a", SecretKey: "s"},
			wantErr: "endpoint is required",
		},
		{
			name:    "missing credentials",
			cfg:     Config{Bucket: "envs", Endpoint: "localhost:9000"},
			wantErr: "access key and secret key are required",
		},
		{
			name: "full settings",
			cfg:  Config{Bucket: "envs", Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestNewMinIO_Defaults(t *testing.T) {
	mfs, err := NewMinIO(Config{
		Endpoint:  "localhost:9000",
		Bucket:    "envs",
		AccessKey: "a",
		SecretKey: "s",
		Prefix:    "/staging/",
	})
	require.NoError(t, err)

	assert.Equal(t, "staging", mfs.prefix)
	assert.Equal(t, int64(5*1024*1024), mfs.multipartThreshold)
	assert.Equal(t, 10, mfs.concurrency)
	assert.Equal(t, int16(1), mfs.defaultReplication)
	assert.Equal(t, core.FSTypeRemote, mfs.Type())
	assert.Equal(t, "staging/env/lib", mfs.joinPath("/env/lib/"))
}

func TestMinioFS_Chroot(t *testing.T) {
	mfs, err := NewMinIO(Config{
		Endpoint:  "localhost:9000",
		Bucket:    "envs",
		AccessKey: "a",
		SecretKey: "s",
		Prefix:    "staging",
	})
	require.NoError(t, err)

	sub, err := mfs.Chroot("env")
	require.NoError(t, err)
	assert.Equal(t, "staging/env/lib", sub.(*MinioFS).joinPath("lib"))
	assert.Equal(t, "staging", mfs.prefix)
}

func TestObject_Perm(t *testing.T) {
	tests := []struct {
		name string
		obj  object
		want string
	}{
		{"file default", object{}, "-rw-r--r--"},
		{"dir default", object{isDir: true}, "drwxr-xr-x"},
		{
			name: "file with metadata",
			obj:  object{info: minio.ObjectInfo{UserMetadata: minio.StringMap{"Envstage-Mode": "755"}}},
			want: "-rwxr-xr-x",
		},
		{
			name: "lower-case key",
			obj:  object{info: minio.ObjectInfo{UserMetadata: minio.StringMap{"envstage-mode": "700"}}},
			want: "-rwx------",
		},
		{
			name: "garbage metadata",
			obj:  object{info: minio.ObjectInfo{UserMetadata: minio.StringMap{"Envstage-Mode": "rwx"}}},
			want: "-rw-r--r--",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.obj.fileInfo("lib/a.jar").Mode().String())
		})
	}
}

func TestOpenFile_UnsupportedFlags(t *testing.T) {
	mfs, err := NewMinIO(Config{Endpoint: "localhost:9000", Bucket: "envs", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)

	_, err = mfs.OpenFile("a.jar", os.O_RDWR, 0o644)
	require.ErrorIs(t, err, core.ErrUnsupported)
}
