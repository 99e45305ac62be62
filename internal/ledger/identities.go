package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"itti/internal/identity"
)

// KnownIdentity is a ledger row describing a customer identity that has
// already been provisioned.
type KnownIdentity struct {
	Identity    identity.Identity
	ContainerID string
	FirstSeenAt time.Time
}

// Known reports whether id has already been recorded in the ledger.
func (s *Store) Known(ctx context.Context, id identity.Identity) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM known_identities WHERE identity = ?", string(id),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query known identity: %w", err)
	}
	return true, nil
}

// KnownSet returns every recorded identity as a set for fast membership tests.
func (s *Store) KnownSet(ctx context.Context) (identity.Set, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT identity FROM known_identities")
	if err != nil {
		return nil, fmt.Errorf("query known identities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := identity.NewSet()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		set.Add(identity.Identity(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return set, nil
}

// RecordAll inserts the given identity→container mappings, skipping any
// identity already present. Recording is idempotent so a pass retried after
// a partial failure never duplicates rows or rewrites first_seen_at.
func (s *Store) RecordAll(ctx context.Context, mappings map[identity.Identity]string, seenAt time.Time) error {
	if len(mappings) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	ts := seenAt.UTC().Format(time.RFC3339)
	for id, containerID := range mappings {
		_, err := s.execWithRetry(ctx,
			"INSERT INTO known_identities (identity, container_id, first_seen_at) VALUES (?, ?, ?) ON CONFLICT(identity) DO NOTHING",
			string(id), containerID, ts,
		)
		if err != nil {
			return fmt.Errorf("record identity %q: %w", id, err)
		}
	}
	return nil
}

// List returns every known identity ordered by name.
func (s *Store) List(ctx context.Context) ([]KnownIdentity, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT identity, container_id, first_seen_at FROM known_identities ORDER BY identity",
	)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []KnownIdentity
	for rows.Next() {
		var (
			raw       string
			container string
			seen      string
		)
		if err := rows.Scan(&raw, &container, &seen); err != nil {
			return nil, fmt.Errorf("scan identity row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, seen)
		if err != nil {
			return nil, fmt.Errorf("parse first_seen_at for %q: %w", raw, err)
		}
		out = append(out, KnownIdentity{
			Identity:    identity.Identity(raw),
			ContainerID: container,
			FirstSeenAt: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identity rows: %w", err)
	}
	return out, nil
}

// Count returns the number of known identities.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM known_identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// Clear removes every known identity and watermark. The next pass rebuilds
// the ledger from the storage backend, reusing folders that still exist.
func (s *Store) Clear(ctx context.Context) error {
	ctx = ensureContext(ctx)
	if _, err := s.execWithRetry(ctx, "DELETE FROM known_identities"); err != nil {
		return fmt.Errorf("clear identities: %w", err)
	}
	if _, err := s.execWithRetry(ctx, "DELETE FROM watermarks"); err != nil {
		return fmt.Errorf("clear watermarks: %w", err)
	}
	return nil
}
