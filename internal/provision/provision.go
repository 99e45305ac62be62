// Package provision resolves customer identities to storage folders,
// creating folders only for identities the per-pass directory does not
// already know. The lookup-first path is the idempotence mechanism that
// keeps reprocessed spreadsheets from creating duplicate folders.
package provision

import (
	"context"
	"log/slog"

	"itti/internal/directory"
	"itti/internal/drive"
	"itti/internal/identity"
	"itti/internal/logging"
)

// Provisioner creates or reuses one folder per customer identity.
type Provisioner struct {
	backend drive.FolderBackend
	logger  *slog.Logger
}

func New(backend drive.FolderBackend, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "provisioner"),
	}
}

// ResolveOrCreate returns the folder for id under parentID. An existing
// directory entry is reused without touching the backend; otherwise the
// folder is created and registered so later identities in the same pass see
// it. Backend failures propagate to the caller for this identity only.
func (p *Provisioner) ResolveOrCreate(ctx context.Context, id identity.Identity, dir *directory.Directory, parentID string) (string, error) {
	if containerID, ok := dir.Lookup(id); ok {
		p.logger.Debug("reusing existing folder",
			logging.String(logging.FieldIdentity, string(id)),
			logging.String(logging.FieldContainer, containerID),
		)
		return containerID, nil
	}

	containerID, err := p.backend.CreateFolder(ctx, parentID, string(id))
	if err != nil {
		return "", err
	}
	dir.Register(id, containerID)
	p.logger.Info("folder created",
		logging.String(logging.FieldIdentity, string(id)),
		logging.String(logging.FieldContainer, containerID),
	)
	return containerID, nil
}

// Batch resolves every identity in ids, isolating failures per identity:
// one backend error never stops the remaining identities from being
// attempted. Identities are processed in sorted order for deterministic
// logs and tests.
func (p *Provisioner) Batch(ctx context.Context, ids identity.Set, dir *directory.Directory, parentID string) (map[identity.Identity]string, map[identity.Identity]error) {
	resolved := make(map[identity.Identity]string, len(ids))
	failed := make(map[identity.Identity]error)

	for _, id := range ids.Sorted() {
		containerID, err := p.ResolveOrCreate(ctx, id, dir, parentID)
		if err != nil {
			p.logger.Error("folder provisioning failed",
				logging.String(logging.FieldIdentity, string(id)),
				logging.Error(err),
			)
			failed[id] = err
			continue
		}
		resolved[id] = containerID
	}
	return resolved, failed
}
