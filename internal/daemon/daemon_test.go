package daemon_test

import (
	"context"
	"testing"
	"time"

	"itti/internal/daemon"
	"itti/internal/logging"
	"itti/internal/notifications"
	"itti/internal/testsupport"
	"itti/internal/workflow"
)

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	logger := logging.NewNop()
	wf := workflow.NewManager(cfg, logger, notifications.NewService(cfg))
	wf.AddLane("ingest", time.Hour, nil, func(ctx context.Context) error { return nil })

	d, err := daemon.New(cfg, store, logger, wf)
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	return d
}

func TestStartStopLifecycle(t *testing.T) {
	d := newDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := d.Status()
	if !status.Running || len(status.Lanes) != 1 {
		t.Fatalf("unexpected status %+v", status)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon stopped")
	}

	// A stopped daemon can start again.
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	d.Stop()
}

func TestSecondInstanceIsRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	newManager := func() *workflow.Manager {
		wf := workflow.NewManager(cfg, logger, notifications.NewService(cfg))
		wf.AddLane("ingest", time.Hour, nil, func(ctx context.Context) error { return nil })
		return wf
	}

	first, err := daemon.New(cfg, store, logger, newManager())
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, store, logger, newManager())
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be rejected")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
