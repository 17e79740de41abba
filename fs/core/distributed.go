package core

import "io/fs"

// ContentSummary aggregates the contents of a path. DirectoryCount includes
// the path itself when it is a directory.
type ContentSummary struct {
	Length         int64
	FileCount      int64
	DirectoryCount int64
}

// DistributedFS is a filesystem shared by the workers of a compute cluster.
//
// Besides the FS operations it exposes the metadata that staging relies on:
// every staged path is made world readable and executable and replicated so
// workers can fetch it locally. Permissions are reported back through
// Stat().Mode().Perm().
type DistributedFS interface {
	FS

	// SetPermission sets the permission bits of the named path.
	SetPermission(name string, perm fs.FileMode) error

	// SetReplication sets the replication factor of the named path.
	// Providers without a replication concept record the value so it can be
	// read back with Replication.
	SetReplication(name string, replication int16) error

	// Replication returns the replication factor of the named path.
	Replication(name string) (int16, error)

	// ContentSummary returns file, directory and byte counts for name and
	// everything below it.
	ContentSummary(name string) (ContentSummary, error)
}
