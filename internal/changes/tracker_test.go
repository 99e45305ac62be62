package changes_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"itti/internal/changes"
	"itti/internal/drive"
	"itti/internal/ledger"
	"itti/internal/logging"
)

type fakeFeed struct {
	events    []drive.ChangeEvent
	err       error
	lastSince *time.Time
	calls     int
}

func (f *fakeFeed) ListModifiedSince(ctx context.Context, containerID string, allow []string, since *time.Time) ([]drive.ChangeEvent, error) {
	f.calls++
	f.lastSince = since
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func newTracker(t *testing.T, advanceOnPollError bool) (*changes.Tracker, *ledger.Store) {
	t.Helper()
	store, err := ledger.OpenPath(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	tracker := changes.New(store, changes.Options{
		ContainerID:        "root",
		MimeAllow:          drive.SpreadsheetMimeTypes(),
		AdvanceOnPollError: advanceOnPollError,
	}, logging.NewNop())
	return tracker, store
}

func TestPollColdStartPassesNilWatermark(t *testing.T) {
	tracker, _ := newTracker(t, false)
	feed := &fakeFeed{events: []drive.ChangeEvent{{ID: "a", Name: "ventas.xlsx"}}}

	events, err := tracker.Poll(context.Background(), feed)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if feed.lastSince != nil {
		t.Fatalf("expected nil since on cold start, got %v", feed.lastSince)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

func TestPollUsesPersistedWatermark(t *testing.T) {
	tracker, store := newTracker(t, false)
	wm := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	if err := store.SetWatermark(context.Background(), "root", wm); err != nil {
		t.Fatalf("SetWatermark failed: %v", err)
	}

	feed := &fakeFeed{}
	if _, err := tracker.Poll(context.Background(), feed); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if feed.lastSince == nil || !feed.lastSince.Equal(wm) {
		t.Fatalf("expected since %v, got %v", wm, feed.lastSince)
	}
}

func TestAdvanceMovesWatermarkForward(t *testing.T) {
	tracker, store := newTracker(t, false)
	ctx := context.Background()

	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	if err := tracker.Advance(ctx, now, false); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	wm, err := store.Watermark(ctx, "root")
	if err != nil {
		t.Fatalf("Watermark failed: %v", err)
	}
	if wm == nil || !wm.Equal(now) {
		t.Fatalf("expected watermark %v, got %v", now, wm)
	}
}

func TestAdvanceSkippedWhenPollFailed(t *testing.T) {
	tracker, store := newTracker(t, false)
	ctx := context.Background()

	if err := tracker.Advance(ctx, time.Now(), true); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	wm, err := store.Watermark(ctx, "root")
	if err != nil {
		t.Fatalf("Watermark failed: %v", err)
	}
	if wm != nil {
		t.Fatalf("expected watermark untouched after failed poll, got %v", wm)
	}
}

func TestAdvanceAfterPollFailureWhenConfigured(t *testing.T) {
	tracker, store := newTracker(t, true)
	ctx := context.Background()

	now := time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC)
	if err := tracker.Advance(ctx, now, true); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	wm, err := store.Watermark(ctx, "root")
	if err != nil {
		t.Fatalf("Watermark failed: %v", err)
	}
	if wm == nil || !wm.Equal(now) {
		t.Fatalf("expected watermark %v, got %v", now, wm)
	}
}

func TestPollWrapsFeedErrors(t *testing.T) {
	tracker, _ := newTracker(t, false)
	boom := errors.New("http 500")
	feed := &fakeFeed{err: boom}

	_, err := tracker.Poll(context.Background(), feed)
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped feed error, got %v", err)
	}
}
