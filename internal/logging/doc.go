// Package logging wires slog with the console and JSON handlers used across
// the daemon, plus the shared field names and context helpers that keep
// per-job log lines correlatable.
package logging
