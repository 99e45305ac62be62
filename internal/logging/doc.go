// Package logging assembles structured slog loggers and formatting helpers
// used across the daemon and CLI.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so pipeline code tags log lines with the
// same component, pass, and identity keys everywhere. A no-op logger is
// provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape as the rest of the system.
package logging
