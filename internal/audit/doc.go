// Package audit keeps the append-only ledger of job lifecycle events:
// submissions, scan results, state transitions, and downloads.
package audit
