// Package services holds shared plumbing for Distillery's external
// integrations: failure-scope sentinel errors, the Wrap helper that tags
// errors for run/folder/file classification, and context annotations that
// follow an ingest through its components. Tool-specific clients live in
// subpackages (magick, exiftool).
package services
