// Package queue persists conversion jobs in SQLite and enforces the job
// state machine: queued to processing to a terminal completed or failed,
// with non-decreasing progress and immutable terminal rows.
package queue
