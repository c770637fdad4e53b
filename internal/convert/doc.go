// Package convert holds the category converter implementations and the
// registry that dispatches jobs to them. External tool converters own
// invocation, error capture, and artifact collection; the data converter
// performs its structural transforms in process.
package convert
