// Package logging assembles the structured slog loggers used by the deepart
// CLI and its conversion pipeline.
//
// It owns the console and JSON handlers, level parsing and output routing, and
// a small set of attribute helpers so components tag their lines with the same
// keys (component, file, step, event_type). A no-op logger is provided for
// tests and for wiring code that runs without a configured sink.
package logging
