// Package core defines the filesystem contracts used by envstage.
//
// Two views of storage exist. The local view (FS) is where archives are read
// and extracted and where plugin folders are resolved. The distributed view
// (DistributedFS) is where runtime environments are staged for cluster
// workers; it adds permission, replication and content-summary operations
// to FS.
//
// # Interface Hierarchy
//
// FS is composed of five sub-interfaces:
//
//   - ReadFS: Open, Stat, ReadDir, ReadFile, Exists
//   - WriteFS: Create, OpenFile, WriteFile, Mkdir, MkdirAll
//   - ManageFS: Remove, RemoveAll, Rename
//   - WalkFS: Walk
//   - ChrootFS: Chroot
//
// Optional capabilities are discovered with type assertions:
//
//   - MetadataFS: Lstat, Chmod, Chtimes
//   - TempFS: TempFile, TempDir
//
// # Tree helpers
//
// CopyTree mirrors a file or directory from one FS into another, empty
// directories included. Summarize counts the files, directories and bytes
// below a path, and is the reference ContentSummary for providers that have
// no cheaper way to compute it.
//
//	if err := core.CopyTree(local, "/tmp/env", dfs, "/opt/env"); err != nil {
//	    return err
//	}
//	summary, err := dfs.ContentSummary("/opt/env")
//
// Providers live in sibling packages: fs/billy (local and in-memory),
// fs/localdfs (single-node DistributedFS over any FS) and fs/minio (object
// storage).
package core
