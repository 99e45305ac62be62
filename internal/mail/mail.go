// Package mail models the inbox side of the pipeline: messages carrying
// spreadsheet attachments, a source abstraction for fetching them, and a
// filesystem drop-dir source used for the local profile and tests.
package mail

import (
	"context"
	"time"
)

// Attachment is a single file carried by a message.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// Message is one inbox item with zero or more attachments.
type Message struct {
	ID          string
	Subject     string
	From        string
	Received    time.Time
	Attachments []Attachment
}

// Filter narrows which messages a source returns. Empty fields match
// everything.
type Filter struct {
	Subject string
	From    string
	Label   string
}

// Source fetches unprocessed messages and acknowledges them once their
// attachments have been stored. MarkProcessed must be idempotent: marking a
// message twice is not an error.
type Source interface {
	FetchUnprocessed(ctx context.Context, filter Filter) ([]Message, error)
	MarkProcessed(ctx context.Context, messageID string) error
}
