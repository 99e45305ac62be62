package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"itti/internal/changes"
	"itti/internal/directory"
	"itti/internal/drive"
	"itti/internal/identity"
	"itti/internal/ledger"
	"itti/internal/logging"
	"itti/internal/provision"
	"itti/internal/services"
	"itti/internal/sheet"
)

// NewIdentityHandler receives the identities first seen during a pass,
// mapped to their folder IDs. Handler errors are logged but never fail the
// pass; the ledger has already recorded the identities, so a handler is
// invoked at most once per identity across the daemon's lifetime.
type NewIdentityHandler interface {
	OnNewIdentities(ctx context.Context, mappings map[identity.Identity]string) error
}

// Report summarizes one ingestion pass.
type Report struct {
	PassID             string
	Started            time.Time
	Finished           time.Time
	Events             int
	SpreadsheetsRead   int
	Identities         int
	NewIdentities      []identity.Identity
	Resolved           map[identity.Identity]string
	FailedIdentities   map[identity.Identity]error
	FailedSpreadsheets map[string]error
	Succeeded          bool
}

// Clean reports whether the pass finished without any per-item failures.
func (r *Report) Clean() bool {
	return r.Succeeded && len(r.FailedIdentities) == 0 && len(r.FailedSpreadsheets) == 0
}

// Orchestrator runs the dedup-and-provision pipeline: poll changed
// spreadsheets, extract customer identities, resolve or create one folder
// per identity, record them in the ledger, and advance the watermark.
type Orchestrator struct {
	tracker       *changes.Tracker
	feed          drive.ChangeFeed
	reader        sheet.Reader
	extractor     *identity.Extractor
	provisioner   *provision.Provisioner
	backend       drive.FolderBackend
	store         *ledger.Store
	parentID      string
	createFolders bool
	handler       NewIdentityHandler
	clock         func() time.Time
	logger        *slog.Logger
}

// Deps bundle the orchestrator collaborators.
type Deps struct {
	Tracker     *changes.Tracker
	Feed        drive.ChangeFeed
	Reader      sheet.Reader
	Extractor   *identity.Extractor
	Provisioner *provision.Provisioner
	Backend     drive.FolderBackend
	Store       *ledger.Store
	// ParentID is the container folders are created under.
	ParentID string
	// CreateFolders false resolves existing folders without creating new ones.
	CreateFolders bool
	// Handler may be nil.
	Handler NewIdentityHandler
	// Clock may be nil; defaults to time.Now.
	Clock func() time.Time
}

func New(deps Deps, logger *slog.Logger) *Orchestrator {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		tracker:       deps.Tracker,
		feed:          deps.Feed,
		reader:        deps.Reader,
		extractor:     deps.Extractor,
		provisioner:   deps.Provisioner,
		backend:       deps.Backend,
		store:         deps.Store,
		parentID:      deps.ParentID,
		createFolders: deps.CreateFolders,
		handler:       deps.Handler,
		clock:         clock,
		logger:        logging.NewComponentLogger(logger, "ingest"),
	}
}

// RunPass executes one ingestion pass. Per-spreadsheet read failures and
// per-identity provisioning failures are isolated in the report; the pass
// only returns an error when it cannot proceed at all (poll failure, folder
// listing failure, or a configuration problem such as a missing identity
// column). The watermark is stamped with the pass start time so anything
// modified mid-pass is picked up again next time.
func (o *Orchestrator) RunPass(ctx context.Context) (*Report, error) {
	report := &Report{
		PassID:             uuid.NewString(),
		Started:            o.clock(),
		Resolved:           map[identity.Identity]string{},
		FailedIdentities:   map[identity.Identity]error{},
		FailedSpreadsheets: map[string]error{},
	}
	passLogger := o.logger.With(logging.String(logging.FieldPassID, report.PassID))
	passLogger.Debug("pass started", logging.String(logging.FieldContainer, o.tracker.ContainerID()))

	events, err := o.tracker.Poll(ctx, o.feed)
	if err != nil {
		if advErr := o.tracker.Advance(ctx, report.Started, true); advErr != nil {
			passLogger.Error("watermark advance failed", logging.Error(advErr))
		}
		report.Finished = o.clock()
		return report, err
	}
	report.Events = len(events)

	if len(events) == 0 {
		if err := o.tracker.Advance(ctx, report.Started, false); err != nil {
			report.Finished = o.clock()
			return report, err
		}
		report.Succeeded = true
		report.Finished = o.clock()
		passLogger.Debug("no modified spreadsheets")
		return report, nil
	}

	all := identity.NewSet()
	for _, event := range events {
		table, err := o.reader.Read(ctx, event.ID)
		if err != nil {
			passLogger.Error("spreadsheet read failed",
				logging.String(logging.FieldItem, event.Name),
				logging.Error(err),
			)
			report.FailedSpreadsheets[event.ID] = err
			continue
		}
		ids, err := o.extractor.Extract(table)
		if err != nil {
			if services.IsPassFatal(err) {
				report.Finished = o.clock()
				return report, err
			}
			passLogger.Error("identity extraction failed",
				logging.String(logging.FieldItem, event.Name),
				logging.Error(err),
			)
			report.FailedSpreadsheets[event.ID] = err
			continue
		}
		report.SpreadsheetsRead++
		all.Union(ids)
	}
	report.Identities = len(all)

	dir := directory.New(o.parentID)
	if err := dir.Refresh(ctx, o.backend); err != nil {
		report.Finished = o.clock()
		return report, err
	}

	if o.createFolders {
		resolved, failed := o.provisioner.Batch(ctx, all, dir, o.parentID)
		report.Resolved = resolved
		report.FailedIdentities = failed
	} else {
		for _, id := range all.Sorted() {
			if containerID, ok := dir.Lookup(id); ok {
				report.Resolved[id] = containerID
			}
		}
	}

	known, err := o.store.KnownSet(ctx)
	if err != nil {
		report.Finished = o.clock()
		return report, err
	}
	newMappings := map[identity.Identity]string{}
	for id, containerID := range report.Resolved {
		if !known.Has(id) {
			newMappings[id] = containerID
		}
	}
	for id := range newMappings {
		report.NewIdentities = append(report.NewIdentities, id)
	}
	report.NewIdentities = identity.NewSet(report.NewIdentities...).Sorted()

	if err := o.store.RecordAll(ctx, report.Resolved, report.Started); err != nil {
		report.Finished = o.clock()
		return report, err
	}

	if err := o.tracker.Advance(ctx, report.Started, false); err != nil {
		report.Finished = o.clock()
		return report, err
	}

	if len(newMappings) > 0 && o.handler != nil {
		if err := o.handler.OnNewIdentities(ctx, newMappings); err != nil {
			passLogger.Error("new-identity handler failed", logging.Error(err))
		}
	}

	report.Succeeded = true
	report.Finished = o.clock()
	passLogger.Info("pass finished",
		logging.Int("events", report.Events),
		logging.Int("identities", report.Identities),
		logging.Int("new_identities", len(report.NewIdentities)),
		logging.Int("failed_identities", len(report.FailedIdentities)),
		logging.Int("failed_spreadsheets", len(report.FailedSpreadsheets)),
	)
	return report, nil
}
