package main

import (
	"context"
	"log/slog"

	"itti/internal/config"
	"itti/internal/logging"
	"itti/internal/mail"
	"itti/internal/pipeline"
	"itti/internal/workflow"
)

// buildManager wires the workflow lanes and the drop-dir watcher. The
// watcher is best effort: when it cannot start, the mail lane still runs on
// its poll interval.
func buildManager(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) (*workflow.Manager, *mail.Watcher) {
	manager := workflow.NewManager(cfg, logger, p.Notifier)

	var nudges <-chan struct{}
	watcher, err := mail.NewWatcher(cfg.Paths.DownloadDir, logger)
	if err != nil {
		logger.Warn("drop-dir watcher unavailable, relying on polling", logging.Error(err))
		watcher = nil
	} else {
		nudges = watcher.Nudges()
		go watcher.Run(ctx)
	}

	p.RegisterLanes(manager, nudges)
	return manager, watcher
}
