// Package daemon coordinates the long-running Itti process.
//
// It wires configuration, the ledger store, and the workflow manager into a
// single lifecycle with flock-based locking to prevent multiple instances.
// Keep orchestration logic here: individual pipeline steps live in their
// respective packages while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
