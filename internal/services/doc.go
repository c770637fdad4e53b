// Package services defines shared utilities consumed by the conversion
// pipeline and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job identifiers, converter names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the pipeline's error taxonomy (unknown format, incompatible
//     format, security threat, conversion failure, timeout, and so on).
//   - A command Executor abstraction that makes external tool invocation
//     testable.
//
// Use these helpers when wiring new converters or pipeline logic so
// operational behaviour (error handling, observability) stays uniform.
package services
