// Package services defines shared error utilities consumed by the ingestion
// pipelines and external collaborators.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     into the taxonomy the orchestrator acts on (backend, read,
//     configuration, transient).
//   - The IsPassFatal predicate separating errors that abort a whole
//     processing pass from errors isolated to a single identity or
//     spreadsheet.
//
// Use these helpers when wiring new pipeline logic so failure handling stays
// uniform across the system.
package services
