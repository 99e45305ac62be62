package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"itti/internal/config"
	"itti/internal/daemon"
	"itti/internal/logging"
	"itti/internal/pipeline"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, logPath, err := logging.NewForDaemon(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if logPath != "" {
		logger.Info("logging to file", logging.String("path", logPath))
	}

	p, err := pipeline.Build(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", logging.Error(err))
		return
	}

	manager, watcher := buildManager(ctx, cfg, p, logger)
	if watcher != nil {
		defer watcher.Close()
	}

	d, err := daemon.New(cfg, p.Store, logger, manager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = p.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("ittid shutting down")
}
