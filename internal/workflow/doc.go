// Package workflow schedules the recurring pipeline passes. Each lane (mail
// fetch, spreadsheet ingestion) runs in its own goroutine on a poll
// interval, optionally woken early by a nudge, and keeps running through
// pass failures with a shorter retry interval.
package workflow
