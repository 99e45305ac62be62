// Package pipeline assembles the configured collaborators into runnable
// passes. Both the one-shot CLI command and the daemon build the same
// Pipeline, so the wiring lives in exactly one place.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"itti/internal/changes"
	"itti/internal/config"
	"itti/internal/drive"
	"itti/internal/identity"
	"itti/internal/ingest"
	"itti/internal/ledger"
	"itti/internal/logging"
	"itti/internal/mail"
	"itti/internal/notifications"
	"itti/internal/provision"
	"itti/internal/services"
	"itti/internal/sheet"
	"itti/internal/workflow"
)

// Pipeline holds the wired collaborators for the two recurring passes.
type Pipeline struct {
	Cfg          *config.Config
	Store        *ledger.Store
	Backend      *drive.LocalBackend
	Source       mail.Source
	Notifier     notifications.Service
	Orchestrator *ingest.Orchestrator
	Attachments  *ingest.AttachmentPass

	logger *slog.Logger
}

// Build wires a pipeline from configuration. Only the local storage profile
// is supported in this build; the drive profile needs Google API credentials
// and a wire client this binary does not bundle.
func Build(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if !cfg.LocalBackend() {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "build",
			fmt.Sprintf("storage backend %q is not available in this build; set drive.backend = \"local\"", cfg.Drive.Backend), nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	backend := drive.NewLocalBackend(cfg.Drive.LocalRoot)
	store, err := ledger.Open(cfg)
	if err != nil {
		return nil, err
	}

	notifier := notifications.NewService(cfg)

	normalize := identity.Default
	if !cfg.Ingest.FoldCase {
		normalize = identity.TrimOnly
	}

	tracker := changes.New(store, changes.Options{
		ContainerID:        cfg.Drive.WatchFolderID,
		MimeAllow:          cfg.Ingest.MimeAllowList,
		AdvanceOnPollError: cfg.Ingest.AdvanceWatermarkOnPollError,
	}, logger)

	orchestrator := ingest.New(ingest.Deps{
		Tracker:       tracker,
		Feed:          backend,
		Reader:        &sheet.CSVReader{Root: cfg.Drive.LocalRoot},
		Extractor:     identity.NewExtractor(cfg.Ingest.IdentityColumn, normalize),
		Provisioner:   provision.New(backend, logger),
		Backend:       backend,
		Store:         store,
		ParentID:      cfg.Drive.RootFolderID,
		CreateFolders: cfg.Ingest.CreateFolders,
		Handler:       notifications.NewCustomerNotifierFor(notifier, cfg.Notifications.NewCustomers, logger),
	}, logger)

	source, err := mail.NewDropDirSource(cfg.Paths.DownloadDir)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	attachments := ingest.NewAttachmentPass(ingest.AttachmentDeps{
		Source:      source,
		Sink:        backend,
		ContainerID: cfg.Drive.WatchFolderID,
		Filter: mail.Filter{
			Subject: cfg.Gmail.FilterSubject,
			From:    cfg.Gmail.FilterFrom,
			Label:   cfg.Gmail.FilterLabel,
		},
		MimeAllow: cfg.Ingest.MimeAllowList,
	}, logger)

	return &Pipeline{
		Cfg:          cfg,
		Store:        store,
		Backend:      backend,
		Source:       source,
		Notifier:     notifier,
		Orchestrator: orchestrator,
		Attachments:  attachments,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// MailPass runs one attachment pass and announces stored attachments.
func (p *Pipeline) MailPass(ctx context.Context) error {
	report, err := p.Attachments.Run(ctx)
	if err != nil {
		return err
	}
	if p.Cfg.Notifications.Attachments && len(report.Stored) > 0 {
		if err := p.Notifier.NotifyAttachmentsStored(ctx, len(report.Stored)); err != nil {
			p.logger.Warn("attachment notification not delivered", logging.Error(err))
		}
	}
	return nil
}

// IngestPass runs one ingestion pass.
func (p *Pipeline) IngestPass(ctx context.Context) error {
	_, err := p.Orchestrator.RunPass(ctx)
	return err
}

// RegisterLanes adds the mail and ingest lanes to the manager. nudges may be
// nil when no drop-dir watcher is running.
func (p *Pipeline) RegisterLanes(m *workflow.Manager, nudges <-chan struct{}) {
	m.AddLane("mail", time.Duration(p.Cfg.Gmail.CheckInterval)*time.Second, nudges, p.MailPass)
	m.AddLane("ingest", time.Duration(p.Cfg.Drive.CheckInterval)*time.Second, nil, p.IngestPass)
}

// Close releases the pipeline's persistent resources.
func (p *Pipeline) Close() error {
	if p == nil || p.Store == nil {
		return nil
	}
	return p.Store.Close()
}
