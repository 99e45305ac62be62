package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Watermark returns the last-checked timestamp for containerID, or nil when
// no pass has completed yet (cold start).
func (s *Store) Watermark(ctx context.Context, containerID string) (*time.Time, error) {
	ctx = ensureContext(ctx)
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT last_checked_at FROM watermarks WHERE container_id = ?", containerID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query watermark: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("parse watermark for %q: %w", containerID, err)
	}
	return &ts, nil
}

// SetWatermark records ts as the last-checked time for containerID. Moving a
// watermark backwards is refused so a delayed writer can never resurrect
// already-processed changes.
func (s *Store) SetWatermark(ctx context.Context, containerID string, ts time.Time) error {
	ctx = ensureContext(ctx)
	current, err := s.Watermark(ctx, containerID)
	if err != nil {
		return err
	}
	if current != nil && ts.Before(*current) {
		return fmt.Errorf("watermark for %q would move backwards (%s -> %s)",
			containerID, current.Format(time.RFC3339), ts.Format(time.RFC3339))
	}
	_, err = s.execWithRetry(ctx,
		"INSERT INTO watermarks (container_id, last_checked_at) VALUES (?, ?) ON CONFLICT(container_id) DO UPDATE SET last_checked_at = excluded.last_checked_at",
		containerID, ts.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set watermark: %w", err)
	}
	return nil
}
