// Package registrar links stored derivatives into the catalog. It guarantees
// each folder has exactly one digital object whose identifier matches the
// folder's component identifier, repairing drift when upstream edits cause
// it, and registers one digital-object component per uploaded file.
package registrar
