// Package sheet carries the normalized in-memory form of ingested
// spreadsheets and the Reader contract the orchestrator consumes. Binary
// spreadsheet parsing belongs to the backend collaborators; this package only
// defines the shape they produce plus a CSV reader for the local profile.
package sheet
