package mail_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"itti/internal/drive"
	"itti/internal/mail"
)

func writeDropFile(t *testing.T, root, name string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, []byte("data:"+name), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
}

func TestFetchUnprocessedOrdersOldestFirst(t *testing.T) {
	root := t.TempDir()
	source, err := mail.NewDropDirSource(root)
	if err != nil {
		t.Fatalf("NewDropDirSource failed: %v", err)
	}

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	writeDropFile(t, root, "later.xlsx", base.Add(time.Hour))
	writeDropFile(t, root, "earlier.xlsx", base)

	messages, err := source.FetchUnprocessed(context.Background(), mail.Filter{})
	if err != nil {
		t.Fatalf("FetchUnprocessed failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != "earlier.xlsx" || messages[1].ID != "later.xlsx" {
		t.Fatalf("unexpected order: %q, %q", messages[0].ID, messages[1].ID)
	}
	if messages[0].Attachments[0].MimeType != drive.MimeXLSX {
		t.Fatalf("unexpected mime: %q", messages[0].Attachments[0].MimeType)
	}
	if string(messages[0].Attachments[0].Data) != "data:earlier.xlsx" {
		t.Fatalf("unexpected attachment data: %q", messages[0].Attachments[0].Data)
	}
}

func TestFetchUnprocessedAppliesSubjectFilter(t *testing.T) {
	root := t.TempDir()
	source, err := mail.NewDropDirSource(root)
	if err != nil {
		t.Fatalf("NewDropDirSource failed: %v", err)
	}
	now := time.Now()
	writeDropFile(t, root, "Clientes-enero.xlsx", now)
	writeDropFile(t, root, "facturas.xlsx", now)

	messages, err := source.FetchUnprocessed(context.Background(), mail.Filter{Subject: "clientes"})
	if err != nil {
		t.Fatalf("FetchUnprocessed failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ID != "Clientes-enero.xlsx" {
		t.Fatalf("expected only the clientes file, got %v", messages)
	}
}

func TestMarkProcessedArchivesFile(t *testing.T) {
	root := t.TempDir()
	source, err := mail.NewDropDirSource(root)
	if err != nil {
		t.Fatalf("NewDropDirSource failed: %v", err)
	}
	writeDropFile(t, root, "ventas.csv", time.Now())

	ctx := context.Background()
	if err := source.MarkProcessed(ctx, "ventas.csv"); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}

	messages, err := source.FetchUnprocessed(ctx, mail.Filter{})
	if err != nil {
		t.Fatalf("FetchUnprocessed failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected archived file to disappear from fetch, got %v", messages)
	}
	if _, err := os.Stat(filepath.Join(root, "processed", "ventas.csv")); err != nil {
		t.Fatalf("expected file in processed/: %v", err)
	}

	// Acknowledging twice is a no-op.
	if err := source.MarkProcessed(ctx, "ventas.csv"); err != nil {
		t.Fatalf("second MarkProcessed failed: %v", err)
	}
}

func TestFetchSkipsProcessedDirAndHiddenFiles(t *testing.T) {
	root := t.TempDir()
	source, err := mail.NewDropDirSource(root)
	if err != nil {
		t.Fatalf("NewDropDirSource failed: %v", err)
	}
	writeDropFile(t, root, ".partial.xlsx", time.Now())

	messages, err := source.FetchUnprocessed(context.Background(), mail.Filter{})
	if err != nil {
		t.Fatalf("FetchUnprocessed failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %v", messages)
	}
}
