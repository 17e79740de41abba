package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sync/atomic"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/fs/fstest"
)

const testBucket = "test-bucket"

// setupTestMinIO starts a MinIO container and returns a client with an
// empty test bucket.
func setupTestMinIO(t *testing.T) *minio.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	minioC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start MinIO container")
	t.Cleanup(func() { _ = minioC.Terminate(ctx) })

	endpoint, err := minioC.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get container endpoint")

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
	})
	require.NoError(t, err, "failed to create MinIO client")
	require.NoError(t, client.MakeBucket(ctx, testBucket, minio.MakeBucketOptions{}))

	return client
}

func newTestFS(t *testing.T, client *minio.Client, prefix string) *MinioFS {
	t.Helper()
	mfs, err := NewMinIO(Config{
		Client:             client,
		Bucket:             testBucket,
		Prefix:             prefix,
		MultipartThreshold: 1024,
	})
	require.NoError(t, err)
	return mfs
}

func TestIntegration_Conformance(t *testing.T) {
	client := setupTestMinIO(t)

	var n atomic.Int64
	fstest.TestDistributedSuite(t, func() core.DistributedFS {
		return newTestFS(t, client, fmt.Sprintf("suite-%d", n.Add(1)))
	}, fstest.S3TestConfig())
}

func TestIntegration_Staging(t *testing.T) {
	client := setupTestMinIO(t)
	mfs := newTestFS(t, client, "cluster")

	t.Run("directory markers", func(t *testing.T) {
		require.NoError(t, mfs.MkdirAll("env/lib", 0o755))

		info, err := mfs.Stat("env/lib")
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		_, err = client.StatObject(context.Background(), testBucket, "cluster/env/lib/", minio.StatObjectOptions{})
		require.NoError(t, err)
	})

	t.Run("permission survives mkdir", func(t *testing.T) {
		require.NoError(t, mfs.SetPermission("env/lib", 0o700))
		require.NoError(t, mfs.MkdirAll("env/lib/nested", 0o755))

		info, err := mfs.Stat("env/lib")
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o700), info.Mode().Perm())
	})

	t.Run("replication metadata", func(t *testing.T) {
		require.NoError(t, mfs.WriteFile("env/lib/a.jar", []byte("jar"), 0o644))
		require.NoError(t, mfs.SetReplication("env/lib/a.jar", 10))
		require.NoError(t, mfs.SetPermission("env/lib/a.jar", 0o755))

		r, err := mfs.Replication("env/lib/a.jar")
		require.NoError(t, err)
		assert.Equal(t, int16(10), r)

		info, err := mfs.Stat("env/lib/a.jar")
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o755), info.Mode().Perm())
	})

	t.Run("virtual directory gets marker on chmod", func(t *testing.T) {
		_, err := client.PutObject(context.Background(), testBucket, "cluster/virtual/x.jar",
			bytes.NewReader(nil), 0, minio.PutObjectOptions{})
		require.NoError(t, err)

		require.NoError(t, mfs.SetPermission("virtual", 0o755))
		_, err = client.StatObject(context.Background(), testBucket, "cluster/virtual/", minio.StatObjectOptions{})
		require.NoError(t, err)
	})

	t.Run("streaming write", func(t *testing.T) {
		f, err := mfs.Create("big.bin")
		require.NoError(t, err)
		payload := make([]byte, 4096)
		for i := range payload {
			payload[i] = byte(i)
		}
		_, err = f.Write(payload)
		require.NoError(t, err)
		require.NoError(t, f.Close())

		data, err := mfs.ReadFile("big.bin")
		require.NoError(t, err)
		assert.Equal(t, payload, data)

		rf, err := mfs.Open("big.bin")
		require.NoError(t, err)
		defer func() { _ = rf.Close() }()

		buf := make([]byte, 4)
		n, err := rf.(io.ReaderAt).ReadAt(buf, 4094)
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("remove non-empty directory", func(t *testing.T) {
		err := mfs.Remove("env/lib")
		require.Error(t, err)

		require.NoError(t, mfs.RemoveAll("env"))
		ok, err := mfs.Exists("env")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
