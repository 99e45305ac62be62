// Package changes tracks which storage items have been modified since the
// last completed ingestion pass. The tracker reads a per-container watermark
// from the ledger, polls the backend change feed, and only advances the
// watermark when the caller confirms the pass finished.
package changes

import (
	"context"
	"log/slog"
	"time"

	"itti/internal/drive"
	"itti/internal/ledger"
	"itti/internal/logging"
	"itti/internal/services"
)

// Tracker detects modified spreadsheets inside one watched container.
type Tracker struct {
	containerID        string
	allowMimes         []string
	store              *ledger.Store
	advanceOnPollError bool
	logger             *slog.Logger
}

// Options configure a Tracker.
type Options struct {
	ContainerID string
	MimeAllow   []string
	// AdvanceOnPollError makes a failed poll still move the watermark when
	// the pass ends. Default false: failed polls are retried with the same
	// window so no change is silently skipped.
	AdvanceOnPollError bool
}

func New(store *ledger.Store, opts Options, logger *slog.Logger) *Tracker {
	return &Tracker{
		containerID:        opts.ContainerID,
		allowMimes:         opts.MimeAllow,
		store:              store,
		advanceOnPollError: opts.AdvanceOnPollError,
		logger:             logging.NewComponentLogger(logger, "change-tracker"),
	}
}

// ContainerID returns the watched container.
func (t *Tracker) ContainerID() string {
	return t.containerID
}

// Poll lists items modified since the persisted watermark. A nil watermark
// (cold start) asks the feed for everything matching the mime allow-list.
// The watermark itself is untouched; call Advance after the pass completes.
func (t *Tracker) Poll(ctx context.Context, feed drive.ChangeFeed) ([]drive.ChangeEvent, error) {
	since, err := t.store.Watermark(ctx, t.containerID)
	if err != nil {
		return nil, services.Wrap(services.ErrBackend, "change-tracker", "poll", "load watermark", err)
	}

	events, err := feed.ListModifiedSince(ctx, t.containerID, t.allowMimes, since)
	if err != nil {
		return nil, services.Wrap(services.ErrBackend, "change-tracker", "poll", "list modified items", err)
	}

	if since == nil {
		t.logger.Info("cold start, scanning full container",
			logging.String(logging.FieldContainer, t.containerID),
			logging.Int("events", len(events)),
		)
	} else {
		t.logger.Debug("polled change feed",
			logging.String(logging.FieldContainer, t.containerID),
			logging.Time("since", *since),
			logging.Int("events", len(events)),
		)
	}
	return events, nil
}

// Advance moves the watermark to now after a completed pass. pollFailed
// reports whether the poll itself errored; in that case the watermark only
// moves when the tracker was configured to allow it.
func (t *Tracker) Advance(ctx context.Context, now time.Time, pollFailed bool) error {
	if pollFailed && !t.advanceOnPollError {
		t.logger.Warn("poll failed, keeping watermark for retry",
			logging.String(logging.FieldContainer, t.containerID),
		)
		return nil
	}
	if err := t.store.SetWatermark(ctx, t.containerID, now); err != nil {
		return services.Wrap(services.ErrBackend, "change-tracker", "advance", "persist watermark", err)
	}
	t.logger.Debug("watermark advanced",
		logging.String(logging.FieldContainer, t.containerID),
		logging.Time("watermark", now),
	)
	return nil
}
