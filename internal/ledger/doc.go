// Package ledger persists cross-pass ingestion state in SQLite: which
// customer identities have already been provisioned (and where), and the
// per-container change watermarks. The database lives in the configured
// state directory and survives restarts, so passes stay idempotent across
// daemon lifetimes.
package ledger
