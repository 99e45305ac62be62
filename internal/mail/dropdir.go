package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"itti/internal/drive"
	"itti/internal/services"
)

// processedDirName holds acknowledged drop files so a restart never
// re-ingests them.
const processedDirName = "processed"

// DropDirSource treats a local directory as an inbox: every regular file in
// the directory is one message with one attachment. Acknowledged files move
// into a processed/ subdirectory.
type DropDirSource struct {
	Root string
}

// NewDropDirSource creates the drop directory and its processed/ subdir.
func NewDropDirSource(root string) (*DropDirSource, error) {
	if root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "mail", "init", "drop directory not configured", nil)
	}
	if err := os.MkdirAll(filepath.Join(root, processedDirName), 0o755); err != nil {
		return nil, services.Wrap(services.ErrBackend, "mail", "init", "create drop directory", err)
	}
	return &DropDirSource{Root: root}, nil
}

// FetchUnprocessed returns one message per file in the drop directory,
// oldest first. The subject filter matches against the filename; From and
// Label have no filesystem equivalent and are ignored.
func (s *DropDirSource) FetchUnprocessed(ctx context.Context, filter Filter) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, services.Wrap(services.ErrBackend, "mail", "fetch", "read drop directory", err)
	}

	var messages []Message
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if filter.Subject != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(filter.Subject)) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, services.Wrap(services.ErrBackend, "mail", "fetch", fmt.Sprintf("stat %s", name), err)
		}
		data, err := os.ReadFile(filepath.Join(s.Root, name))
		if err != nil {
			return nil, services.Wrap(services.ErrBackend, "mail", "fetch", fmt.Sprintf("read %s", name), err)
		}
		messages = append(messages, Message{
			ID:       name,
			Subject:  name,
			Received: info.ModTime(),
			Attachments: []Attachment{{
				Filename: name,
				MimeType: drive.MimeForExtension(name),
				Data:     data,
			}},
		})
	}

	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Received.Equal(messages[j].Received) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].Received.Before(messages[j].Received)
	})
	return messages, nil
}

// MarkProcessed moves the file into processed/. A file that is already gone
// counts as processed.
func (s *DropDirSource) MarkProcessed(ctx context.Context, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src := filepath.Join(s.Root, messageID)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	dst := filepath.Join(s.Root, processedDirName, messageID)
	if err := os.Rename(src, dst); err != nil {
		return services.Wrap(services.ErrBackend, "mail", "ack", fmt.Sprintf("archive %s", messageID), err)
	}
	return nil
}
