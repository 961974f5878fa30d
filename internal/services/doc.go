// Package services defines shared utilities consumed by the workflow stage
// handlers and the remote upscaling integration.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the kinds the orchestrator reports (timeout, upstream, io,
//     validation, configuration).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
