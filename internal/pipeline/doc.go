// Package pipeline orchestrates a collection ingest run.
//
// A run is strictly sequential: setup checks, then folders in ascending
// order, then each folder's files in ascending order. Failures have three
// blast radii. Setup failures abort the run. Folder metadata failures skip
// the folder and all its files. File failures skip the single file. Nothing
// is retried or rolled back; skipped sources stay in the tree for a later
// run, and every skip is logged with the offending component identifier.
package pipeline
