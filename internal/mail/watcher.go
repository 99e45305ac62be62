package mail

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"itti/internal/logging"
	"itti/internal/services"
)

// Watcher nudges the email lane as soon as a file lands in the drop
// directory, so new attachments don't wait for the next poll interval.
type Watcher struct {
	fs     *fsnotify.Watcher
	nudges chan struct{}
	logger *slog.Logger
}

// NewWatcher starts watching dir for new or rewritten files.
func NewWatcher(dir string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, services.Wrap(services.ErrBackend, "mail-watcher", "init", "create watcher", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, services.Wrap(services.ErrBackend, "mail-watcher", "init", "watch drop directory", err)
	}
	return &Watcher{
		fs:     fsw,
		nudges: make(chan struct{}, 1),
		logger: logging.NewComponentLogger(logger, "mail-watcher"),
	}, nil
}

// Nudges delivers at most one pending signal; coalescing is fine because a
// single pass picks up every file present at fetch time.
func (w *Watcher) Nudges() <-chan struct{} {
	return w.nudges
}

// Run pumps filesystem events into the nudge channel until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.logger.Debug("drop directory changed", logging.String(logging.FieldItem, event.Name))
			select {
			case w.nudges <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", logging.Error(err))
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
