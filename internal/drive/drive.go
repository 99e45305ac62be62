package drive

import (
	"context"
	"time"
)

// Folder is one sub-folder returned by a backend listing.
type Folder struct {
	ID   string
	Name string
}

// ChangeEvent describes one storage item modified since a watermark.
type ChangeEvent struct {
	ID         string
	Name       string
	ModifiedAt time.Time
	MimeType   string
}

// FolderBackend is the storage collaborator the dedup engine provisions
// folders through. ListSubfolders returns the complete set under parentID;
// pagination is the implementation's concern. Failures wrap
// services.ErrBackend.
type FolderBackend interface {
	ListSubfolders(ctx context.Context, parentID string) ([]Folder, error)
	CreateFolder(ctx context.Context, parentID, name string) (string, error)
}

// ChangeFeed lists items under a container modified after the given time.
// A nil since means a cold start: everything matching the mime allow-list
// is returned. Results are ordered by modification time, newest first.
type ChangeFeed interface {
	ListModifiedSince(ctx context.Context, containerID string, mimeAllowList []string, since *time.Time) ([]ChangeEvent, error)
}

// FileSink persists raw bytes as a named item inside a container and
// returns the new item's ID.
type FileSink interface {
	Persist(ctx context.Context, containerID, name string, data []byte) (string, error)
}
