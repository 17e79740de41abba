package config

import (
	"github.com/jmgilman/envstage/errors"
	"github.com/jmgilman/envstage/fs/billy"
	"github.com/jmgilman/envstage/fs/core"
	"github.com/jmgilman/envstage/fs/localdfs"
	miniofs "github.com/jmgilman/envstage/fs/minio"
)

// Open builds the distributed filesystem described by s. Local and memory
// storage are wrapped by localdfs and report replication as defaultRep
// until a path's factor is set.
func (s StorageConfig) Open(defaultRep int16) (core.DistributedFS, error) {
	switch s.Type {
	case StorageLocal, "":
		root := s.Root
		if root == "" {
			root = "/"
		}
		return localdfs.New(billy.NewLocal(billy.WithRoot(root)), localdfs.WithDefaultReplication(defaultRep)), nil
	case StorageMemory:
		return localdfs.New(billy.NewMemory(), localdfs.WithDefaultReplication(defaultRep)), nil
	case StorageMinIO:
		mfs, err := miniofs.NewMinIO(miniofs.Config{
			Endpoint:           s.MinIO.Endpoint,
			Bucket:             s.MinIO.Bucket,
			AccessKey:          s.MinIO.AccessKey,
			SecretKey:          s.MinIO.SecretKey,
			UseSSL:             s.MinIO.UseSSL,
			Prefix:             s.MinIO.Prefix,
			DefaultReplication: defaultRep,
		})
		if err != nil {
			return nil, err
		}
		return mfs, nil
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unknown storage type %q", s.Type)
	}
}
