// Package daemon composes the conversion service: job store, audit ledger,
// notification bus, worker manager, HTTP API server, retention sweeper, and
// the file lock that enforces a single running instance.
package daemon
