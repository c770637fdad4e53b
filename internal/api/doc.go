// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal queue models into transport-friendly DTOs so
// consumers never couple to internal types.
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status, audit event
// types) are exposed as lowercase strings. Timestamps use RFC3339 with
// milliseconds. Artifact downloads resolve through ResolveDownload, which
// confines every request to the owning job's output directory.
package api
