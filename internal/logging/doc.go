// Package logging builds the slog loggers used across Distillery.
//
// It provides console and JSON handlers, typed attribute helpers, and the
// standardized field keys (run, collection, folder, image) that keep ingest
// log lines greppable. Tests use NewNop to silence output.
package logging
