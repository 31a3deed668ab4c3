// Package logging assembles the structured slog loggers used across csmedia.
//
// Console output goes through tint with colors only on a terminal, JSON output
// keeps stable key names for machine consumption, and NewFromConfig tees either
// one into a JSON log file under the configured log directory. A no-op logger
// is provided for tests and wiring code that cannot fail.
package logging
