// Package report records ingest run history and per-file outcomes in a local
// SQLite database so operators can audit what moved, what skipped, and why,
// after the progress stream for a run is gone.
package report
