// Package directory holds the per-pass index of existing customer folders.
// The index is rebuilt from a full backend listing at the start of every
// pass and discarded afterwards; the backend, not this cache, is the source
// of truth.
package directory

import (
	"context"

	"itti/internal/drive"
	"itti/internal/identity"
)

// Directory maps normalized customer identities to folder container IDs
// under one parent. Callers must pass already-normalized identities to both
// Register and Lookup; the directory never renormalizes. It carries no
// locking: a pass runs refresh, lookups, and registers sequentially.
type Directory struct {
	parentID string
	index    map[identity.Identity]string
}

// New builds an empty directory for the given parent container.
func New(parentID string) *Directory {
	return &Directory{parentID: parentID, index: make(map[identity.Identity]string)}
}

// ParentID returns the parent container this directory indexes.
func (d *Directory) ParentID() string {
	return d.parentID
}

// Refresh replaces the index from a full backend listing. The new index is
// built completely before the swap, so a listing failure mid-pagination
// leaves the previous index intact.
func (d *Directory) Refresh(ctx context.Context, backend drive.FolderBackend) error {
	folders, err := backend.ListSubfolders(ctx, d.parentID)
	if err != nil {
		return err
	}
	next := make(map[identity.Identity]string, len(folders))
	for _, folder := range folders {
		next[identity.Identity(folder.Name)] = folder.ID
	}
	d.index = next
	return nil
}

// Lookup returns the container ID registered for id, if any.
func (d *Directory) Lookup(id identity.Identity) (string, bool) {
	containerID, ok := d.index[id]
	return containerID, ok
}

// Register records a folder created during the current pass. It is a pure
// in-memory insert: the caller creates the backend folder first, then
// registers it here so the pass stays consistent without re-listing.
func (d *Directory) Register(id identity.Identity, containerID string) {
	d.index[id] = containerID
}

// Len returns the number of indexed folders.
func (d *Directory) Len() int {
	return len(d.index)
}
