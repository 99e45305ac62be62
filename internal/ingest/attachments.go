package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"itti/internal/drive"
	"itti/internal/logging"
	"itti/internal/mail"
)

// StoredAttachment records one attachment persisted to storage.
type StoredAttachment struct {
	MessageID string
	Filename  string
	ItemID    string
}

// AttachmentReport summarizes one attachment pass.
type AttachmentReport struct {
	PassID   string
	Started  time.Time
	Finished time.Time
	Messages int
	Stored   []StoredAttachment
	Failed   map[string]error
}

// AttachmentPass moves spreadsheet attachments from the inbox into the
// watched storage container, where the next ingestion pass picks them up.
type AttachmentPass struct {
	source      mail.Source
	sink        drive.FileSink
	containerID string
	filter      mail.Filter
	allowMimes  []string
	clock       func() time.Time
	logger      *slog.Logger
}

// AttachmentDeps bundle the attachment pass collaborators.
type AttachmentDeps struct {
	Source      mail.Source
	Sink        drive.FileSink
	ContainerID string
	Filter      mail.Filter
	MimeAllow   []string
	Clock       func() time.Time
}

func NewAttachmentPass(deps AttachmentDeps, logger *slog.Logger) *AttachmentPass {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AttachmentPass{
		source:      deps.Source,
		sink:        deps.Sink,
		containerID: deps.ContainerID,
		filter:      deps.Filter,
		allowMimes:  deps.MimeAllow,
		clock:       clock,
		logger:      logging.NewComponentLogger(logger, "attachments"),
	}
}

// Run fetches unprocessed messages, stores every spreadsheet attachment, and
// acknowledges each message only after all of its attachments are persisted.
// A failing message is left unacknowledged for the next pass and never
// blocks the rest of the batch. Stored names carry a timestamp prefix so two
// attachments with the same filename never collide.
func (p *AttachmentPass) Run(ctx context.Context) (*AttachmentReport, error) {
	report := &AttachmentReport{
		PassID:  uuid.NewString(),
		Started: p.clock(),
		Failed:  map[string]error{},
	}
	passLogger := p.logger.With(logging.String(logging.FieldPassID, report.PassID))

	messages, err := p.source.FetchUnprocessed(ctx, p.filter)
	if err != nil {
		report.Finished = p.clock()
		return report, err
	}
	report.Messages = len(messages)

	for _, msg := range messages {
		if err := p.processMessage(ctx, msg, report); err != nil {
			passLogger.Error("message processing failed",
				logging.String(logging.FieldItem, msg.ID),
				logging.Error(err),
			)
			report.Failed[msg.ID] = err
		}
	}

	report.Finished = p.clock()
	if len(report.Stored) > 0 || len(report.Failed) > 0 {
		passLogger.Info("attachment pass finished",
			logging.Int("messages", report.Messages),
			logging.Int("stored", len(report.Stored)),
			logging.Int("failed", len(report.Failed)),
		)
	}
	return report, nil
}

func (p *AttachmentPass) processMessage(ctx context.Context, msg mail.Message, report *AttachmentReport) error {
	stored := 0
	for _, att := range msg.Attachments {
		if !drive.IsSpreadsheetMime(att.MimeType, p.allowMimes) {
			p.logger.Debug("skipping non-spreadsheet attachment",
				logging.String(logging.FieldItem, att.Filename),
				logging.String("mime", att.MimeType),
			)
			continue
		}
		name := fmt.Sprintf("%s_%s", p.clock().UTC().Format("20060102_150405"), att.Filename)
		itemID, err := p.sink.Persist(ctx, p.containerID, name, att.Data)
		if err != nil {
			return fmt.Errorf("persist %s: %w", att.Filename, err)
		}
		report.Stored = append(report.Stored, StoredAttachment{
			MessageID: msg.ID,
			Filename:  att.Filename,
			ItemID:    itemID,
		})
		stored++
	}

	if err := p.source.MarkProcessed(ctx, msg.ID); err != nil {
		return fmt.Errorf("acknowledge message: %w", err)
	}
	if stored > 0 {
		p.logger.Debug("message archived",
			logging.String(logging.FieldItem, msg.ID),
			logging.Int("attachments", stored),
		)
	}
	return nil
}
