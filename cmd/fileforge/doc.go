// Command fileforge is the CLI for the fileforge conversion daemon. It
// manages the daemon lifecycle, submits files for conversion, and inspects
// jobs, statistics, and the audit ledger over the daemon's unix socket.
package main
