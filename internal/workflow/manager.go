package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"itti/internal/config"
	"itti/internal/logging"
	"itti/internal/notifications"
)

// PassFunc runs one pass of a lane's work. Returning an error marks the lane
// unhealthy until the next successful pass; it never stops the lane.
type PassFunc func(ctx context.Context) error

// LaneStatus is a point-in-time snapshot of one lane.
type LaneStatus struct {
	Name      string
	Runs      int
	Failures  int
	LastRun   time.Time
	LastError string
}

type laneState struct {
	name     string
	interval time.Duration
	run      PassFunc
	nudges   <-chan struct{}
	logger   *slog.Logger

	mu       sync.Mutex
	runs     int
	failures int
	lastRun  time.Time
	lastErr  error
}

func (l *laneState) snapshot() LaneStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	status := LaneStatus{
		Name:     l.name,
		Runs:     l.runs,
		Failures: l.failures,
		LastRun:  l.lastRun,
	}
	if l.lastErr != nil {
		status.LastError = l.lastErr.Error()
	}
	return status
}

func (l *laneState) record(when time.Time, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs++
	l.lastRun = when
	l.lastErr = err
	if err != nil {
		l.failures++
	}
}

// Manager coordinates the recurring passes as independent lanes, one
// goroutine each. A lane wakes on its poll interval or on a nudge, runs its
// pass, and backs off on failure.
type Manager struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
	lanes    []*laneState

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a workflow manager with no lanes registered.
func NewManager(cfg *config.Config, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
	}
}

// AddLane registers a named lane. nudges may be nil for interval-only lanes.
// Lanes must be registered before Start.
func (m *Manager) AddLane(name string, interval time.Duration, nudges <-chan struct{}, run PassFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lanes = append(m.lanes, &laneState{
		name:     name,
		interval: interval,
		run:      run,
		nudges:   nudges,
		logger:   logging.NewComponentLogger(m.logger, "workflow-"+name),
	})
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	if len(m.lanes) == 0 {
		return errors.New("workflow lanes not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(len(m.lanes))
	for _, lane := range m.lanes {
		go m.runLane(runCtx, lane)
	}
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the manager's lanes are active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Status returns a snapshot per registered lane.
func (m *Manager) Status() []LaneStatus {
	m.mu.Lock()
	lanes := append([]*laneState(nil), m.lanes...)
	m.mu.Unlock()

	out := make([]LaneStatus, 0, len(lanes))
	for _, lane := range lanes {
		out = append(out, lane.snapshot())
	}
	return out
}

func (m *Manager) runLane(ctx context.Context, lane *laneState) {
	defer m.wg.Done()

	// Passes run detached from shutdown: an in-flight pass finishes its batch
	// so the ledger and watermark stay consistent with the backend.
	// Cancellation takes effect at the between-pass select below.
	passCtx := context.WithoutCancel(ctx)

	for {
		err := lane.run(passCtx)
		lane.record(time.Now(), err)

		wait := lane.interval
		if err != nil {
			lane.logger.Error("pass failed", logging.Error(err))
			if m.cfg.Notifications.Errors {
				if notifyErr := m.notifier.NotifyPassFailed(passCtx, err); notifyErr != nil {
					lane.logger.Warn("failure notification not delivered", logging.Error(notifyErr))
				}
			}
			wait = time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		case <-lane.nudgeChannel():
		}
	}
}

// nudgeChannel returns a channel that never fires for lanes without one.
func (l *laneState) nudgeChannel() <-chan struct{} {
	if l.nudges != nil {
		return l.nudges
	}
	return nil
}
