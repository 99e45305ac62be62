// Command itti is the operator CLI: one-shot passes, ledger inspection,
// configuration utilities, and notification checks. The long-running daemon
// lives in cmd/ittid.
package main
