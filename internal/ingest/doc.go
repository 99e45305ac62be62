// Package ingest runs the two recurring passes that make up the pipeline:
// the attachment pass (inbox to storage) and the ingestion pass (changed
// spreadsheets to deduplicated customer folders). Both passes isolate
// per-item failures so one broken message or spreadsheet never starves the
// rest of the batch.
package ingest
