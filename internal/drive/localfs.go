package drive

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"itti/internal/services"
)

// LocalBackend implements the storage collaborators over a directory tree.
// Container and item IDs are paths relative to Root, so IDs stay opaque to
// callers while remaining inspectable on disk. It backs the development
// profile and the integration tests; the cloud profile replaces it wholesale.
type LocalBackend struct {
	Root string
}

func NewLocalBackend(root string) *LocalBackend {
	return &LocalBackend{Root: root}
}

func (b *LocalBackend) abs(id string) string {
	return filepath.Join(b.Root, filepath.FromSlash(id))
}

func (b *LocalBackend) rel(path string) string {
	rel, err := filepath.Rel(b.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// ListSubfolders returns every directory directly under parentID.
func (b *LocalBackend) ListSubfolders(ctx context.Context, parentID string) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.abs(parentID))
	if err != nil {
		return nil, services.Wrap(services.ErrBackend, "local backend", "list subfolders", parentID, err)
	}
	var folders []Folder
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folders = append(folders, Folder{
			ID:   b.rel(filepath.Join(b.abs(parentID), entry.Name())),
			Name: entry.Name(),
		})
	}
	return folders, nil
}

// CreateFolder creates a directory under parentID and returns its ID.
func (b *LocalBackend) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(b.abs(parentID), name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", services.Wrap(services.ErrBackend, "local backend", "create folder", name, err)
	}
	return b.rel(path), nil
}

// ListModifiedSince returns files under containerID whose mime type matches
// the allow-list and whose modification time is after since, newest first.
func (b *LocalBackend) ListModifiedSince(ctx context.Context, containerID string, mimeAllowList []string, since *time.Time) ([]ChangeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.abs(containerID))
	if err != nil {
		return nil, services.Wrap(services.ErrBackend, "local backend", "list changes", containerID, err)
	}
	var events []ChangeEvent
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		mime := MimeForExtension(entry.Name())
		if !IsSpreadsheetMime(mime, mimeAllowList) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, services.Wrap(services.ErrBackend, "local backend", "stat item", entry.Name(), err)
		}
		modified := info.ModTime().UTC()
		if since != nil && !modified.After(*since) {
			continue
		}
		events = append(events, ChangeEvent{
			ID:         b.rel(filepath.Join(b.abs(containerID), entry.Name())),
			Name:       entry.Name(),
			ModifiedAt: modified,
			MimeType:   mime,
		})
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].ModifiedAt.After(events[j].ModifiedAt)
	})
	return events, nil
}

// Persist writes data as a file inside containerID and returns its ID.
func (b *LocalBackend) Persist(ctx context.Context, containerID, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := b.abs(containerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrBackend, "local backend", "ensure container", containerID, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrBackend, "local backend", "persist", name, err)
	}
	return b.rel(path), nil
}

// MimeForExtension maps file extensions to the mime types the change feed
// filters on. Unknown extensions map to application/octet-stream.
func MimeForExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return MimeXLSX
	case ".xls":
		return MimeXLS
	case ".csv":
		return MimeCSV
	case ".gsheet":
		return MimeGoogleSheet
	default:
		return "application/octet-stream"
	}
}
