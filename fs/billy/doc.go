// Package billy adapts go-billy filesystems to core.FS.
//
// LocalFS wraps osfs and is the local view envstage extracts archives into
// and resolves plugin folders from. MemoryFS wraps memfs and backs tests and
// the "memory" storage type. Both also implement core.MetadataFS and
// core.TempFS:
//
//	local := billy.NewLocal()
//	dir, err := local.TempDir("", "envstage-")
//	if err != nil {
//	    return err
//	}
//	defer local.RemoveAll(dir)
//
// FS instances are safe for concurrent use. File handles are not.
package billy
